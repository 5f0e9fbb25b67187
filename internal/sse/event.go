package sse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is one server-sent event. ID carries the replay checkpoint the
// client echoes back via Last-Event-ID on reconnect.
type Event struct {
	ID   string
	Name string
	Data string
}

// Marshal renders the event as a text/event-stream frame.
func (e Event) Marshal() []byte {
	var b strings.Builder
	if e.ID != "" {
		b.WriteString("id: ")
		b.WriteString(e.ID)
		b.WriteByte('\n')
	}
	if e.Name != "" {
		b.WriteString("event: ")
		b.WriteString(e.Name)
		b.WriteByte('\n')
	}
	for _, line := range strings.Split(e.Data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// EventID builds a per-member event/connection id: "<memberID>_<unixNano>".
// The timestamp suffix keeps ids unique per member in practice; a collision
// within the same nanosecond is a benign last-write-wins race. The suffix has
// a fixed digit count, so lexicographic order on one member's ids is
// chronological order.
func EventID(memberID uint) string {
	return fmt.Sprintf("%d_%d", memberID, time.Now().UnixNano())
}

// MemberPrefix is the id prefix shared by all of a member's events and
// connections. The trailing separator matters: member 4 must not match
// member 42.
func MemberPrefix(memberID uint) string {
	return strconv.FormatUint(uint64(memberID), 10) + "_"
}
