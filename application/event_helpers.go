package application

import (
	"fmt"

	"lotteryledger/domain/events"
)

// AssertEventType asserts an event to a concrete type, accepting pointers too
func AssertEventType[T events.Event](event events.Event) (T, error) {
	var zero T

	if e, ok := event.(T); ok {
		return e, nil
	}
	if p, ok := any(event).(*T); ok && p != nil {
		return *p, nil
	}

	errMsg := fmt.Sprintf("event type assertion failed: expected %T, got %T", zero, event)
	if event != nil {
		errMsg += fmt.Sprintf(" (event.Type()=%s)", event.Type())
	}
	return zero, fmt.Errorf("%s", errMsg)
}
