package env

import "testing"

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

type fakeLifecycle struct {
	name    string
	started *[]string
	stopped *[]string
}

func (f *fakeLifecycle) Start() { *f.started = append(*f.started, f.name) }
func (f *fakeLifecycle) Stop()  { *f.stopped = append(*f.stopped, f.name) }

func TestRegisterResolveRoundTrip(t *testing.T) {
	e := New(nil)
	Register[greeter](e, englishGreeter{})

	g, ok := Resolve[greeter](e)
	if !ok {
		t.Fatal("expected greeter to resolve")
	}
	if g.Greet() != "hello" {
		t.Fatalf("Greet() = %q", g.Greet())
	}

	if _, ok := Resolve[*fakeLifecycle](e); ok {
		t.Fatal("expected no *fakeLifecycle to be registered")
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	e := New(nil)
	Register[greeter](e, englishGreeter{})

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic registering the same type twice")
		}
	}()
	Register[greeter](e, englishGreeter{})
}

func TestMustResolveMissingPanics(t *testing.T) {
	e := New(nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic resolving an unregistered type")
		}
	}()
	MustResolve[greeter](e)
}

func TestShutdownStopsLifecyclesInReverseOrder(t *testing.T) {
	e := New(nil)
	var started, stopped []string

	Register[*fakeLifecycle](e, &fakeLifecycle{name: "a", started: &started, stopped: &stopped})

	// A second distinct lifecycle type so two services can coexist.
	type lifecycleB struct{ *fakeLifecycle }
	Register[lifecycleB](e, lifecycleB{&fakeLifecycle{name: "b", started: &started, stopped: &stopped}})

	if len(started) != 2 || started[0] != "a" || started[1] != "b" {
		t.Fatalf("unexpected start order: %v", started)
	}

	e.Shutdown()
	if len(stopped) != 2 || stopped[0] != "b" || stopped[1] != "a" {
		t.Fatalf("expected reverse stop order, got: %v", stopped)
	}
}
