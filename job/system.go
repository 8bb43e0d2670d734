package job

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/forgecore/engine/fiber"
	"github.com/forgecore/engine/internal/elog"
)

// Config configures a System.
type Config struct {
	// Workers is the number of dispatcher goroutines; worker 0 is the
	// only one eligible for AffinityMain-only jobs. Defaults to
	// runtime.GOMAXPROCS(0).
	Workers int
	// NormalFibers and ExtendedFibers size the two fiber.Pool classes.
	// Defaults to fiber.DefaultNormalSlots / fiber.DefaultExtendedSlots.
	NormalFibers   int
	ExtendedFibers int
	Logger         *slog.Logger
}

// DefaultConfig returns a Config sized for the host machine.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		NormalFibers:   fiber.DefaultNormalSlots,
		ExtendedFibers: fiber.DefaultExtendedSlots,
	}
}

// System is a fixed pool of worker goroutines that pop prioritized Jobs
// and dispatch them onto fibers rented from a fiber.Pool.
type System struct {
	cfg        Config
	log        *slog.Logger
	fibers     *fiber.Pool
	queues     [PriorityCount]queue
	sem        *semaphore
	workerMask []AffinityMask

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool
}

// New creates a System. Start must be called before Schedule has any
// effect.
func New(cfg Config) *System {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.NormalFibers <= 0 {
		cfg.NormalFibers = fiber.DefaultNormalSlots
	}
	if cfg.ExtendedFibers <= 0 {
		cfg.ExtendedFibers = fiber.DefaultExtendedSlots
	}
	return &System{
		cfg:    cfg,
		log:    elog.Named(cfg.Logger, "job"),
		fibers: fiber.NewPool(cfg.NormalFibers, cfg.ExtendedFibers),
		sem:    newSemaphore(),
	}
}

// Start launches the worker goroutines. Calling Start on an already
// started System is a no-op.
func (s *System) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.workerMask = make([]AffinityMask, s.cfg.Workers)
	for i := range s.workerMask {
		if i == 0 {
			s.workerMask[i] = AffinityAny
		} else {
			s.workerMask[i] = AffinityAny &^ AffinityMain
		}
	}
	s.log.Info("starting job system", "workers", s.cfg.Workers,
		"normal_fibers", s.cfg.NormalFibers, "extended_fibers", s.cfg.ExtendedFibers)
	s.wg.Add(s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		go s.workerLoop(i)
	}
}

// Stop signals every worker to finish its current dispatch and exit, then
// waits for them and tears down the fiber pool. A worker keeps popping and
// dispatching jobs still queued after the signal until it finds its queues
// empty; a job it holds while no fiber is free when it sees the signal is
// put back at the front of its queue, and jobs still queued once every
// worker has exited are left unexecuted.
func (s *System) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	s.sem.Signal(s.cfg.Workers)
	s.wg.Wait()
	s.fibers.Shutdown()
	s.log.Info("job system stopped")
}

// Schedule enqueues j onto its priority's queue and wakes one sleeping
// worker. A zero Affinity is treated as AffinityAny; an out-of-range
// Priority is normalized to PriorityNormal.
func (s *System) Schedule(j *Job) {
	if j.Affinity == 0 {
		j.Affinity = AffinityAny
	}
	if j.Priority >= PriorityCount {
		j.Priority = PriorityNormal
	}
	s.queues[j.Priority].push(j)
	s.sem.Signal(1)
}

func (s *System) workerLoop(idx int) {
	defer s.wg.Done()
	mask := s.workerMask[idx]
	for {
		j, ok := s.popJob(mask)
		if !ok {
			if !s.sem.WaitOrStop(s.ctx.Done()) {
				return
			}
			continue
		}
		f := s.rentFiberBusySpin(j.Stack)
		if f == nil {
			// Only nil when shutting down mid-spin; the job is returned to
			// its queue undispatched rather than silently dropped.
			s.queues[j.Priority].pushFront(j)
			return
		}
		dispatched := j
		f.Dispatch(func() {
			ctx := WithFiberContext(s.ctx)
			dispatched.Execute(ctx)
			if dispatched.Group != nil {
				dispatched.Group.Signal(1)
			}
			s.fibers.Release(f)
		})
	}
}

// popJob scans priority queues from highest to lowest, returning the
// first job whose Affinity matches mask. A job popped but rejected for
// affinity is requeued at the tail of its own priority queue (spec.md
// §4.1: "mismatched pops go back on the queue tail"), so it doesn't
// permanently shadow same-priority jobs behind it from workers it can
// never run on.
func (s *System) popJob(mask AffinityMask) (*Job, bool) {
	for p := Priority(0); p < PriorityCount; p++ {
		q := &s.queues[p]
		j, ok := q.pop()
		if !ok {
			continue
		}
		if j.Affinity&mask == 0 {
			q.push(j)
			continue
		}
		return j, true
	}
	return nil, false
}

// rentFiberBusySpin matches spec.md's stated oversubscription behavior:
// when every fiber of the requested class is rented, keep retrying
// instead of failing the job, yielding the OS thread between attempts.
// Returns nil only if the system is stopping.
func (s *System) rentFiberBusySpin(class fiber.Class) *fiber.Fiber {
	for {
		if f, ok := s.fibers.Rent(class); ok {
			return f
		}
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}
		runtime.Gosched()
	}
}
