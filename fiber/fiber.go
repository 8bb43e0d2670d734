package fiber

// Fiber is a persistent goroutine that executes one dispatched task at a
// time. Its goroutine is started once, by the owning Pool, and runs for
// the pool's entire lifetime; Dispatch hands it a closure instead of the
// pool spawning a fresh goroutine per job, so renting a fiber never pays
// goroutine start-up cost.
type Fiber struct {
	index int
	class Class
	inbox chan func()
	quit  chan struct{}
}

func newFiber(index int, class Class) *Fiber {
	f := &Fiber{
		index: index,
		class: class,
		inbox: make(chan func(), 1),
		quit:  make(chan struct{}),
	}
	go f.loop()
	return f
}

func (f *Fiber) loop() {
	for {
		select {
		case task := <-f.inbox:
			task()
		case <-f.quit:
			return
		}
	}
}

// Dispatch hands task to the fiber's goroutine and returns immediately.
// The caller must only Dispatch to a fiber it currently holds via
// Pool.Rent, and must not Dispatch again until task has finished running
// (job.System enforces this by only releasing a fiber from inside the
// task itself, after it returns).
func (f *Fiber) Dispatch(task func()) {
	f.inbox <- task
}

// Class reports which capacity class this fiber belongs to.
func (f *Fiber) Class() Class { return f.class }

func (f *Fiber) stop() {
	close(f.quit)
}
