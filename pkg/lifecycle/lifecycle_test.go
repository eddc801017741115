package lifecycle

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewExecutionIDIsUniqueUUID(t *testing.T) {
	a, b := NewExecutionID(), NewExecutionID()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("id %q is not a uuid: %v", a, err)
	}
}

func TestObserverFunc(t *testing.T) {
	var got Event
	var obs Observer = ObserverFunc(func(evt Event) { got = evt })
	obs.Observe(Event{ExecutionID: "x", Kind: KindNoResponse})
	if got.ExecutionID != "x" || got.Kind != KindNoResponse {
		t.Fatalf("observer did not receive event: %#v", got)
	}
}
