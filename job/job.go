package job

import (
	"context"

	"github.com/forgecore/engine/fiber"
)

// Job is a single unit of scheduled work. Execute receives a context
// marked as running on a fiber (see WaitGroup.Wait, which checks for that
// mark); jobs that never call WaitGroup.Wait can ignore that and treat
// ctx as plain cancellation.
type Job struct {
	Name     string
	Execute  func(ctx context.Context)
	Priority Priority
	Affinity AffinityMask
	// Stack selects the fiber capacity class this job runs on. Zero value
	// is fiber.Normal; jobs that recurse deeply request fiber.Extended.
	Stack fiber.Class
	// Group, if non-nil, is Signaled by 1 once Execute returns.
	Group *WaitGroup

	next *Job // intrusive link, owned by whichever queue currently holds the job
}

// queue is an intrusive singly-linked FIFO of *Job, guarded by a spinLock
// since push/pop only ever touch two pointers.
type queue struct {
	lock spinLock
	data queueData
}

type queueData struct {
	front, back *Job
	len         int
}

func (q *queue) push(j *Job) {
	q.lock.Lock()
	j.next = nil
	if q.data.back == nil {
		q.data.front = j
		q.data.back = j
	} else {
		q.data.back.next = j
		q.data.back = j
	}
	q.data.len++
	q.lock.Unlock()
}

// pushFront requeues a job at the head instead of the tail, used only
// when a job has already matched affinity and been popped but the fiber
// pool has no slot to dispatch it on (system shutting down mid-rent) —
// it goes back exactly where it came from, not behind jobs scheduled in
// the meantime. Affinity-mismatched jobs use push (tail), not this.
func (q *queue) pushFront(j *Job) {
	q.lock.Lock()
	j.next = q.data.front
	q.data.front = j
	if q.data.back == nil {
		q.data.back = j
	}
	q.data.len++
	q.lock.Unlock()
}

func (q *queue) pop() (*Job, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	j := q.data.front
	if j == nil {
		return nil, false
	}
	q.data.front = j.next
	if q.data.front == nil {
		q.data.back = nil
	}
	j.next = nil
	q.data.len--
	return j, true
}

func (q *queue) empty() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.data.front == nil
}
