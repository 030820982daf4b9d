package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that nothing arrives on ch within the window.
func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event received: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func helloCmd(id, name string, roles ...string) *Command {
	if roles == nil {
		roles = []string{}
	}
	return &Command{
		Kind: CommandHello,
		User: &Identity{ID: id, Name: name, DisplayRoles: roles},
	}
}

func boolPtr(v bool) *bool {
	return &v
}
