// Package session runs one two-party conversation over a single
// connection.
//
// Two workers share the connection: inbound reads chunks from the peer
// and hands them to a Display, outbound reads operator lines from an
// Input and writes them to the peer.  They never talk to each other;
// they coordinate only through a Termination.  The Session owns the
// connection and is the only thing that ever releases it, after both
// workers have returned.
//
// Shutdown runs Running → Draining → Closed.  Any stop of the
// Termination (peer close, quit directive, fault, interrupt) moves the
// session to Draining: the outbound worker's input wait is cancelled,
// and the inbound worker's read is aborted either at once (interrupt) or
// after DrainTimeout if the peer has not answered our half-close.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"gotalk/config"
	ncerr "gotalk/internal/errors"
	"gotalk/internal/metrics"
	"gotalk/internal/transport"
	"gotalk/util"
)

// State is the controller's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options tunes a Session.  Zero values select the defaults in package
// config.
type Options struct {
	// BufSize is the largest chunk read from the peer at once.
	BufSize int
	// QuitDirective is the line prefix that ends the session.
	QuitDirective string
	// DrainTimeout bounds how long the controller waits for the peer to
	// close after the session stopped for any reason but an interrupt.
	// Negative means abort the pending read immediately.
	DrainTimeout time.Duration
	// LineRate caps outbound lines per second (0 = unlimited).
	LineRate float64

	Logger  *util.Logger
	Metrics *metrics.Collector
}

func (o Options) withDefaults() Options {
	if o.BufSize <= 0 {
		o.BufSize = config.DefaultBufSize
	}
	if o.QuitDirective == "" {
		o.QuitDirective = config.DefaultQuitDirective
	}
	if o.DrainTimeout == 0 {
		o.DrainTimeout = config.DefaultDrainTimeout
	}
	if o.Logger == nil {
		o.Logger = util.NewLogger(0)
	}
	return o
}

// Session is the controller of one conversation.
type Session struct {
	conn     *transport.Guard
	reporter Reporter
	opts     Options
	log      *util.Logger

	term *Termination
	in   *inbound
	out  *outbound

	state    atomic.Int32
	started  atomic.Bool
	peerQuit atomic.Bool

	interruptOnce sync.Once
	interrupted   chan struct{}
}

// New builds a session that takes ownership of conn.  rep may be nil.
func New(conn transport.Conn, input Input, display Display, rep Reporter, opts Options) *Session {
	opts = opts.withDefaults()
	log := opts.Logger.Named("session")

	s := &Session{
		conn:        transport.NewGuard(conn),
		reporter:    rep,
		opts:        opts,
		log:         log,
		term:        NewTermination(),
		interrupted: make(chan struct{}),
	}

	s.in = &inbound{
		conn:       s.conn,
		display:    display,
		report:     s.report,
		term:       s.term,
		stats:      opts.Metrics,
		log:        log.Named("inbound"),
		bufSize:    opts.BufSize,
		quit:       quitDetector{directive: opts.QuitDirective},
		onPeerQuit: func() { s.peerQuit.Store(true) },
	}

	var limiter *rate.Limiter
	if opts.LineRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.LineRate), config.DefaultRateBurst)
	}
	s.out = &outbound{
		conn:      s.conn,
		input:     input,
		report:    s.report,
		term:      s.term,
		limiter:   limiter,
		stats:     opts.Metrics,
		log:       log.Named("outbound"),
		directive: opts.QuitDirective,
	}
	return s
}

// Interrupt asks the session to stop and abort any blocked read.  It
// never blocks and never touches the connection itself; repeated calls
// are no-ops.  Safe to call from any goroutine.
func (s *Session) Interrupt() {
	s.term.Stop(CauseInterrupt)
	s.interruptOnce.Do(func() { close(s.interrupted) })
}

// Running reports whether the session should continue.
func (s *Session) Running() bool { return s.term.Running() }

// State returns the controller's current state.
func (s *Session) State() State { return State(s.state.Load()) }

// QuitDirective returns the line prefix that ends the session.
func (s *Session) QuitDirective() string { return s.opts.QuitDirective }

// RemoteAddr returns the peer's address.
func (s *Session) RemoteAddr() string { return s.conn.RemoteAddr().String() }

// advance moves the state forward; the state never goes back.
func (s *Session) advance(to State) {
	for {
		cur := s.state.Load()
		if State(cur) >= to {
			return
		}
		if s.state.CompareAndSwap(cur, int32(to)) {
			s.log.Debug("%s → %s", State(cur), to)
			return
		}
	}
}

func (s *Session) report(src Source, err error) {
	s.opts.Metrics.RecordError(src.String() + ": " + err.Error())
	if s.reporter != nil {
		s.reporter.Report(src, err)
	}
}

// Run starts both workers and blocks until the session is closed.
// Cancelling ctx has the same effect as Interrupt.  The connection is
// released exactly once, after both workers have returned.  Run may be
// called only once.
func (s *Session) Run(ctx context.Context) Result {
	if !s.started.CompareAndSwap(false, true) {
		panic("session: Run called twice")
	}
	s.advance(StateRunning)
	s.log.Verbose("running with %s", s.RemoteAddr())

	inputCtx, cancelInput := context.WithCancel(context.Background())
	defer cancelInput()

	workersDone := make(chan struct{})
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		s.watch(ctx, cancelInput, workersDone)
	}()

	var g errgroup.Group
	g.Go(func() error {
		s.in.run()
		return nil
	})
	g.Go(func() error {
		s.out.run(inputCtx)
		return nil
	})
	g.Wait() //nolint:errcheck
	close(workersDone)
	<-watchDone

	s.term.Stop(CauseFinalized)
	s.advance(StateDraining)
	if err := s.conn.Close(); err != nil && !ncerr.IsClosed(err) {
		s.log.Debug("release: %v", err)
	}
	s.advance(StateClosed)
	s.opts.Metrics.Finish()

	res := s.result()
	s.log.Verbose("closed (%s, %s)", res.Cause, res.Outcome())
	return res
}

// watch drives the Draining phase.  It returns once the pending read has
// been aborted or both workers are done, whichever comes first.
func (s *Session) watch(ctx context.Context, cancelInput context.CancelFunc, workersDone <-chan struct{}) {
	select {
	case <-s.term.Done():
	case <-ctx.Done():
		s.Interrupt()
	case <-s.interrupted:
	case <-workersDone:
		return
	}

	s.advance(StateDraining)
	cancelInput()

	cause := s.term.Cause()
	s.log.Verbose("draining: %s", cause)

	if cause == CauseInterrupt || s.opts.DrainTimeout < 0 {
		s.conn.Abort()
		return
	}

	timer := time.NewTimer(s.opts.DrainTimeout)
	defer timer.Stop()

	select {
	case <-workersDone:
	case <-ctx.Done():
		s.log.Verbose("interrupted while draining")
		s.Interrupt()
		s.conn.Abort()
	case <-s.interrupted:
		s.log.Verbose("interrupted while draining")
		s.conn.Abort()
	case <-timer.C:
		s.log.Verbose("peer did not close within %s, aborting read", s.opts.DrainTimeout)
		s.conn.Abort()
	}
}

func (s *Session) result() Result {
	return Result{
		Cause:       s.term.Cause(),
		InputClosed: s.out.inputClosed.Load(),
		PeerQuit:    s.peerQuit.Load(),
		HalfClosed:  s.conn.WriteClosed(),
		Aborted:     s.conn.Aborted(),
		Stats:       s.opts.Metrics.Snapshot(),
	}
}
