package job

import "testing"

func TestQueueFIFOOrder(t *testing.T) {
	var q queue
	a := &Job{Name: "a"}
	b := &Job{Name: "b"}
	c := &Job{Name: "c"}
	q.push(a)
	q.push(b)
	q.push(c)

	for _, want := range []*Job{a, b, c} {
		got, ok := q.pop()
		if !ok || got != want {
			t.Fatalf("want %v, got %v (ok=%v)", want.Name, got, ok)
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueuePushFrontPreservesPositionAcrossRentRetry(t *testing.T) {
	var q queue
	a := &Job{Name: "a"}
	b := &Job{Name: "b"}
	q.push(a)
	got, _ := q.pop()
	q.pushFront(got) // simulate a fiber-rent failure returning the job undispatched
	q.push(b)

	first, _ := q.pop()
	if first != a {
		t.Fatalf("want a back in its original place, got %v", first.Name)
	}
	second, _ := q.pop()
	if second != b {
		t.Fatalf("want b second, got %v", second.Name)
	}
}

func TestQueueAffinityMismatchRequeuesAtTail(t *testing.T) {
	var q queue
	a := &Job{Name: "a"}
	b := &Job{Name: "b"}
	q.push(a)
	q.push(b)
	got, _ := q.pop()
	q.push(got) // simulate an affinity-reject requeue: spec.md §4.1, tail not front

	first, _ := q.pop()
	if first != b {
		t.Fatalf("want b ahead of the requeued mismatch, got %v", first.Name)
	}
	second, _ := q.pop()
	if second != a {
		t.Fatalf("want a requeued to the tail, got %v", second.Name)
	}
}

func TestQueueEmpty(t *testing.T) {
	var q queue
	if !q.empty() {
		t.Fatal("want empty queue to report empty")
	}
	q.push(&Job{Name: "a"})
	if q.empty() {
		t.Fatal("want non-empty queue to report not empty")
	}
}
