package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"growsim.app/internal/persistence/snapshot"
	"growsim.app/internal/protocol"
)

var (
	ErrBusy         = errors.New("command inbox full")
	ErrTickInFlight = errors.New("a tick is already in flight")
	ErrBadSpeed     = errors.New("speed must be positive and finite")
	ErrStopped      = errors.New("loop stopped")
)

type LoopConfig struct {
	GameID             string
	TickInterval       time.Duration
	Speed              float64
	SnapshotEveryTicks uint64
	StartPaused        bool
	InboxSize          int
}

func (c *LoopConfig) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.Speed <= 0 || math.IsInf(c.Speed, 0) || math.IsNaN(c.Speed) {
		c.Speed = 1
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 1024
	}
}

type controlReq struct {
	pause  *bool
	speed  float64
	result chan error
}

type doReq struct {
	fn   func(State)
	done chan struct{}
}

// Loop drives a State on a wall-clock ticker. Everything that touches the
// state runs on the Run goroutine, so at most one tick is ever in flight and
// commands, saves and observers only see settled state.
type Loop struct {
	cfg    LoopConfig
	logger *log.Logger

	state State
	seed  int64
	// last state known to encode; restored when a tick fails
	settled snapshot.SaveV1

	inbox   chan Submission
	control chan controlReq
	do      chan doReq
	stop    chan struct{}
	stopMu  sync.Once

	tickLogger   TickLogger
	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SaveV1
	observers    []func(Frame)

	stepping atomic.Bool
	tick     atomic.Uint64
	paused   atomic.Bool
	speed    atomic.Uint64 // float64 bits
	lastErr  atomic.Value  // string
}

func NewLoop(s State, cfg LoopConfig, logger *log.Logger) *Loop {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.New(log.Writer(), "[game] ", log.LstdFlags|log.Lmicroseconds)
	}
	l := &Loop{
		cfg:     cfg,
		logger:  logger,
		state:   s,
		seed:    s.Seed,
		inbox:   make(chan Submission, cfg.InboxSize),
		control: make(chan controlReq, 16),
		do:      make(chan doReq),
		stop:    make(chan struct{}),
	}
	if save, err := Save(s, cfg.GameID); err == nil {
		l.settled = save
	} else {
		logger.Printf("initial state does not encode: %v", err)
	}
	l.tick.Store(s.Ticks)
	l.paused.Store(cfg.StartPaused)
	l.speed.Store(math.Float64bits(cfg.Speed))
	return l
}

// Sinks must be set before Run.
func (l *Loop) SetTickLogger(t TickLogger)                { l.tickLogger = t }
func (l *Loop) SetAuditLogger(a AuditLogger)              { l.auditLogger = a }
func (l *Loop) SetSnapshotSink(ch chan<- snapshot.SaveV1) { l.snapshotSink = ch }
func (l *Loop) OnTick(fn func(Frame))                     { l.observers = append(l.observers, fn) }
func (l *Loop) GameID() string                            { return l.cfg.GameID }
func (l *Loop) Seed() int64                               { return l.seed }
func (l *Loop) TickInterval() time.Duration               { return l.cfg.TickInterval }
func (l *Loop) CurrentTick() uint64                       { return l.tick.Load() }
func (l *Loop) Paused() bool                              { return l.paused.Load() }
func (l *Loop) Speed() float64                            { return math.Float64frombits(l.speed.Load()) }

// LastError is the message of the panic that last paused the loop, if any.
func (l *Loop) LastError() string {
	s, _ := l.lastErr.Load().(string)
	return s
}

// Submit queues a command for the next tick boundary. It never blocks.
func (l *Loop) Submit(sub Submission) error {
	select {
	case l.inbox <- sub:
		return nil
	default:
		return ErrBusy
	}
}

func (l *Loop) Pause() error  { t := true; return l.sendControl(controlReq{pause: &t}) }
func (l *Loop) Resume() error { f := false; return l.sendControl(controlReq{pause: &f}) }

func (l *Loop) SetSpeed(speed float64) error {
	if speed <= 0 || math.IsInf(speed, 0) || math.IsNaN(speed) {
		return ErrBadSpeed
	}
	return l.sendControl(controlReq{speed: speed})
}

func (l *Loop) sendControl(req controlReq) error {
	req.result = make(chan error, 1)
	select {
	case l.control <- req:
	case <-l.stop:
		return ErrStopped
	}
	select {
	case err := <-req.result:
		return err
	case <-l.stop:
		return ErrStopped
	}
}

// Do runs fn on the loop goroutine between ticks. Use it for saves and for
// reading state from other goroutines.
func (l *Loop) Do(ctx context.Context, fn func(State)) error {
	req := doReq{fn: fn, done: make(chan struct{})}
	select {
	case l.do <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stop:
		return ErrStopped
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SaveNow captures the current settled state.
func (l *Loop) SaveNow(ctx context.Context) (snapshot.SaveV1, error) {
	var (
		save snapshot.SaveV1
		err  error
	)
	if derr := l.Do(ctx, func(s State) { save, err = Save(s, l.cfg.GameID) }); derr != nil {
		return save, derr
	}
	return save, err
}

func (l *Loop) Stop() { l.stopMu.Do(func() { close(l.stop) }) }

func (l *Loop) interval() time.Duration {
	d := time.Duration(float64(l.cfg.TickInterval) / l.Speed())
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval())
	defer ticker.Stop()

	var pending []Submission

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case sub := <-l.inbox:
			pending = append(pending, sub)
		case req := <-l.control:
			if req.pause != nil {
				l.paused.Store(*req.pause)
				if !*req.pause {
					l.lastErr.Store("")
				}
			}
			if req.speed > 0 {
				l.speed.Store(math.Float64bits(req.speed))
				ticker.Reset(l.interval())
			}
			req.result <- nil
		case req := <-l.do:
			req.fn(l.state)
			close(req.done)
		case <-ticker.C:
			if l.paused.Load() && len(pending) == 0 {
				continue
			}
			if _, err := l.advance(pending, !l.paused.Load()); err != nil {
				l.logger.Printf("tick %d failed, pausing: %v", l.state.Ticks, err)
			}
			pending = pending[:0]
		}
	}
}

// StepOnce applies cmds and runs one tick with the same ordering as Run. It
// must not be called while Run is active.
func (l *Loop) StepOnce(cmds []protocol.Command) (Frame, error) {
	subs := make([]Submission, 0, len(cmds))
	for _, c := range cmds {
		subs = append(subs, Submission{Cmd: c})
	}
	return l.advance(subs, true)
}

// advance applies queued commands in receive order and, if step is set, runs
// one tick. A panic, or a state that no longer encodes, pauses the loop and
// puts back the last settled state; the batch is then reported as failed.
func (l *Loop) advance(subs []Submission, step bool) (f Frame, err error) {
	if !l.stepping.CompareAndSwap(false, true) {
		return Frame{}, ErrTickInFlight
	}
	defer l.stepping.Store(false)

	tick := l.state.Ticks
	cmds := make([]protocol.Command, 0, len(subs))
	results := make([]Result, 0, len(subs))
	defer func() {
		if r := recover(); r != nil {
			l.logger.Printf("panic: %v\n%s", r, debug.Stack())
			err = l.fail(fmt.Sprintf("panic: %v", r))
		}
		if err != nil {
			for _, sub := range subs[len(results):] {
				results = append(results, Result{CommandID: sub.Cmd.ID, Type: sub.Cmd.Type})
			}
			for i := range results {
				results[i].Accepted = false
				results[i].Code = protocol.ErrInternal
				results[i].Message = err.Error()
				results[i].CreatedID = ""
			}
		}
		l.report(tick, subs, results)
	}()

	for _, sub := range subs {
		cmds = append(cmds, sub.Cmd)
		results = append(results, Apply(l.state, sub.Cmd))
	}

	f = Frame{Tick: tick, Stepped: step, Results: results}
	if step {
		l.state, f.Report = Step(l.state)
	}
	save, serr := Save(l.state, l.cfg.GameID)
	if serr != nil {
		return Frame{}, l.fail(fmt.Sprintf("tick %d: %v", tick, serr))
	}
	l.settled = save
	f.Digest = save.Header.Digest
	f.State = l.state
	l.tick.Store(l.state.Ticks)

	if l.tickLogger != nil {
		_ = l.tickLogger.WriteTick(TickLogEntry{Tick: tick, Commands: cmds, Stepped: step, Names: f.Report.Names, Digest: f.Digest})
	}
	for _, fn := range l.observers {
		fn(f)
	}

	every := l.cfg.SnapshotEveryTicks
	if step && l.snapshotSink != nil && every > 0 && l.state.Ticks%every == 0 {
		select {
		case l.snapshotSink <- save:
		default:
			l.logger.Printf("snapshot sink backpressure at tick %d", l.state.Ticks)
		}
	}
	return f, nil
}

// fail pauses the loop and restores the last settled state.
func (l *Loop) fail(msg string) error {
	l.paused.Store(true)
	l.lastErr.Store(msg)
	if len(l.settled.Company) > 0 {
		c, err := l.state.Company.Reload(l.settled.Company)
		if err != nil {
			l.logger.Printf("restore settled state at tick %d: %v", l.settled.Header.Tick, err)
		} else {
			l.state = State{Ticks: l.settled.Header.Tick, Seed: l.settled.Header.Seed, Company: c}
		}
	}
	l.tick.Store(l.state.Ticks)
	return errors.New(msg)
}

// report audits and answers each submission once its batch has settled.
func (l *Loop) report(tick uint64, subs []Submission, results []Result) {
	for i, res := range results {
		sub := subs[i]
		if l.auditLogger != nil {
			_ = l.auditLogger.WriteAudit(AuditEntry{
				Tick:      tick,
				Actor:     sub.Actor,
				CommandID: res.CommandID,
				Command:   res.Type,
				Accepted:  res.Accepted,
				Code:      res.Code,
				Reason:    res.Message,
				CreatedID: res.CreatedID,
			})
		}
		if sub.Reply != nil {
			select {
			case sub.Reply <- res:
			default:
			}
		}
	}
}
