package session

import "testing"

func TestAuthStateDeliversCurrentValueOnSubscribe(t *testing.T) {
	state := NewAuthState()
	state.Set(true)

	ch, cancel := state.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		if !v {
			t.Errorf("expected true on subscribe, got false")
		}
	default:
		t.Fatal("no value available immediately after subscribe")
	}
}

func TestAuthStateBroadcastsChanges(t *testing.T) {
	state := NewAuthState()

	ch, cancel := state.Subscribe()
	defer cancel()
	<-ch // initial false

	state.Set(true)
	if v := <-ch; !v {
		t.Errorf("expected true after Set(true)")
	}

	state.Set(false)
	if v := <-ch; v {
		t.Errorf("expected false after Set(false)")
	}
}

func TestAuthStateConflatesToLatest(t *testing.T) {
	state := NewAuthState()

	ch, cancel := state.Subscribe()
	defer cancel()
	// Leave the initial value unconsumed; rapid writes must never block the
	// setter and the subscriber must end up seeing only the newest value.
	state.Set(true)
	state.Set(false)
	state.Set(true)

	if v := <-ch; !v {
		t.Errorf("expected latest value true, got false")
	}
	select {
	case v := <-ch:
		t.Errorf("expected a single conflated value, got extra %v", v)
	default:
	}
}

func TestAuthStateCancelClosesChannel(t *testing.T) {
	state := NewAuthState()

	ch, cancel := state.Subscribe()
	<-ch
	cancel()

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after cancel")
	}

	// A set after cancel must not panic or deliver.
	state.Set(true)

	// Cancelling twice is a no-op.
	cancel()
}

func TestAuthStateAuthenticated(t *testing.T) {
	state := NewAuthState()
	if state.Authenticated() {
		t.Error("initial state should be unauthenticated")
	}
	state.Set(true)
	if !state.Authenticated() {
		t.Error("expected authenticated after Set(true)")
	}
}
