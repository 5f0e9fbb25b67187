package sse

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStreamSendAndReceive(t *testing.T) {
	s := NewStream("1_1000", time.Minute, 4)
	if err := s.Send(Event{ID: "1_1000", Name: "connect", Data: "hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	ev := <-s.Events()
	if ev.Data != "hi" {
		t.Fatalf("received %q, want %q", ev.Data, "hi")
	}
}

func TestStreamSendAfterClose(t *testing.T) {
	s := NewStream("1_1000", time.Minute, 4)
	s.Close()
	err := s.Send(Event{Data: "late"})
	if !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("Send after Close = %v, want ErrStreamClosed", err)
	}
}

func TestStreamSendFullBuffer(t *testing.T) {
	s := NewStream("1_1000", time.Minute, 1)
	if err := s.Send(Event{Data: "first"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	err := s.Send(Event{Data: "second"})
	if !errors.Is(err, ErrStreamFull) {
		t.Fatalf("Send on full buffer = %v, want ErrStreamFull", err)
	}
}

func TestStreamCloseRunsHookOnce(t *testing.T) {
	s := NewStream("1_1000", time.Minute, 4)
	calls := 0
	s.OnClose(func() { calls++ })
	s.Close()
	s.Close()
	s.Close()
	if calls != 1 {
		t.Fatalf("close hook ran %d times, want 1", calls)
	}
}

func TestStreamCloseDrainsBufferedEvents(t *testing.T) {
	s := NewStream("1_1000", time.Minute, 4)
	s.Send(Event{Data: "a"})
	s.Send(Event{Data: "b"})
	s.Close()

	var got []string
	for ev := range s.Events() {
		got = append(got, ev.Data)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("drained %v, want [a b]", got)
	}
}

func TestEventMarshal(t *testing.T) {
	ev := Event{ID: "42_1000", Name: "notification", Data: "hello"}
	frame := string(ev.Marshal())
	want := "id: 42_1000\nevent: notification\ndata: hello\n\n"
	if frame != want {
		t.Fatalf("Marshal = %q, want %q", frame, want)
	}
}

func TestEventMarshalMultilineData(t *testing.T) {
	ev := Event{Data: "line1\nline2"}
	frame := string(ev.Marshal())
	if !strings.Contains(frame, "data: line1\ndata: line2\n") {
		t.Fatalf("multiline data not split into data fields: %q", frame)
	}
}

func TestMemberPrefix(t *testing.T) {
	if got := MemberPrefix(42); got != "42_" {
		t.Fatalf("MemberPrefix(42) = %q, want %q", got, "42_")
	}
	if !strings.HasPrefix(EventID(42), "42_") {
		t.Fatalf("EventID(42) = %q, want 42_ prefix", EventID(42))
	}
}
