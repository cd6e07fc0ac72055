package config

import (
	"strings"
	"testing"
)

// ── ParsePort ────────────────────────────────────────────────────────

func TestParsePort(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"80", 80, false},
		{"5000", 5000, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"70000", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePort(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePort(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePort(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestListenPort(t *testing.T) {
	if got := (&Config{Port: 5000}).ListenPort(); got != 5000 {
		t.Errorf("positional port: got %d", got)
	}
	if got := (&Config{LocalPort: 6000}).ListenPort(); got != 6000 {
		t.Errorf("-p port: got %d", got)
	}
}

// ── Config.Validate ──────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid connect", Config{Host: "example.com", Port: 80}, false},
		{"valid listen positional", Config{Listen: true, Port: 5000}, false},
		{"valid listen -p", Config{Listen: true, LocalPort: 5000}, false},
		{"valid listen both equal", Config{Listen: true, Port: 5000, LocalPort: 5000}, false},
		{"connect with source port", Config{Host: "x", Port: 80, LocalPort: 40000}, false},
		{"connect with retries", Config{Host: "x", Port: 80, Retries: 3}, false},
		{"listen no port", Config{Listen: true}, true},
		{"listen conflicting ports", Config{Listen: true, Port: 5000, LocalPort: 6000}, true},
		{"listen with retries", Config{Listen: true, Port: 5000, Retries: 2}, true},
		{"connect no host", Config{Port: 80}, true},
		{"connect no port", Config{Host: "x"}, true},
		{"port out of range", Config{Host: "x", Port: 70000}, true},
		{"negative retries", Config{Host: "x", Port: 80, Retries: -1}, true},
		{"negative rate", Config{Host: "x", Port: 80, LineRate: -2}, true},
		{"negative buffer", Config{Host: "x", Port: 80, BufSize: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantSub string
	}{
		{
			name:    "listen no port has hint",
			cfg:     Config{Listen: true},
			wantSub: "hint: gotalk -l 5000",
		},
		{
			name:    "missing host has hint",
			cfg:     Config{Port: 80},
			wantSub: "--host: hostname is required",
		},
		{
			name:    "conflicting ports names the positional",
			cfg:     Config{Listen: true, Port: 5000, LocalPort: 6000},
			wantSub: "--port=6000: conflicts with positional port 5000",
		},
		{
			name:    "range message",
			cfg:     Config{Host: "x", Port: 99999},
			wantSub: "out of range 1-65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}
