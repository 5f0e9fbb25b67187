package sse

import (
	"strings"
	"sync"
)

// Registry tracks the open push streams in this process. It is constructed
// once at startup and handed to whoever needs it; nothing here is a package
// singleton, so tests build isolated instances.
//
// All operations are safe for arbitrary concurrent callers. A Register that
// returned before a FindByMemberPrefix started is visible to that lookup.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]*Stream
}

func NewRegistry() *Registry {
	return &Registry{streams: make(map[string]*Stream)}
}

// Register stores the stream under id and returns it unchanged so callers
// can register-then-configure in one expression. Ids embed a millisecond
// timestamp; on the off chance of a collision, last write wins.
func (r *Registry) Register(id string, s *Stream) *Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[id] = s
	return s
}

// Unregister removes the entry. Removing an absent id is a no-op; two racing
// unregistrations of the same id are both fine.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, id)
}

// FindByMemberPrefix returns a snapshot of every live stream belonging to
// the member. Callers iterate the snapshot without holding any registry
// lock, so a slow write to one stream never serializes other members.
func (r *Registry) FindByMemberPrefix(memberID uint) map[string]*Stream {
	prefix := MemberPrefix(memberID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make(map[string]*Stream)
	for id, s := range r.streams {
		if strings.HasPrefix(id, prefix) {
			found[id] = s
		}
	}
	return found
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}
