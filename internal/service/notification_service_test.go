package service

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pawly/config"
	"pawly/internal/models"
	"pawly/internal/sse"

	"gorm.io/gorm"
)

type fakeNotificationStore struct {
	mu      sync.Mutex
	rows    map[uint]*models.Notification
	nextID  uint
	created int
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{rows: make(map[uint]*models.Notification)}
}

func (f *fakeNotificationStore) Create(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	row := *n
	f.rows[n.ID] = &row
	f.created++
	return nil
}

func (f *fakeNotificationStore) GetByID(id uint) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	row := *n
	return &row, nil
}

func (f *fakeNotificationStore) MarkRead(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.rows[id]; ok {
		n.IsRead = true
	}
	return nil
}

type fakeMemberStore struct {
	members map[uint]*models.Member
}

func (f *fakeMemberStore) GetByID(id uint) (*models.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func testStreamConfig() config.StreamConfig {
	return config.StreamConfig{
		IdleTimeout:     time.Minute,
		SendBuffer:      16,
		ReplayCacheSize: 32,
		ReplayCacheTTL:  time.Hour,
		DispatchWorkers: 1,
		DispatchQueue:   16,
	}
}

func newTestService(t *testing.T, memberIDs ...uint) (*NotificationService, *fakeNotificationStore, *sse.Registry) {
	t.Helper()
	store := newFakeNotificationStore()
	members := &fakeMemberStore{members: make(map[uint]*models.Member)}
	for _, id := range memberIDs {
		members.members[id] = &models.Member{ID: id, Nickname: "member"}
	}
	registry := sse.NewRegistry()
	cache := sse.NewEventCache(32, time.Hour)
	dispatcher := NewDispatcher(1, 16)
	t.Cleanup(dispatcher.Close)
	svc := NewNotificationService(testStreamConfig(), registry, cache, store, members, dispatcher)
	return svc, store, registry
}

// drainProbe consumes the synthetic "connect" event pushed on every new stream.
func drainProbe(t *testing.T, s *sse.Stream) {
	t.Helper()
	select {
	case ev := <-s.Events():
		if ev.Name != "connect" {
			t.Fatalf("first event = %q, want connect probe", ev.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("no probe event on new stream")
	}
}

func receiveEvent(t *testing.T, s *sse.Stream) sse.Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return sse.Event{}
	}
}

func TestConnectSendsProbeAndRegisters(t *testing.T) {
	svc, _, registry := newTestService(t, 42)
	stream, err := svc.Connect(42, "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	drainProbe(t, stream)
	if registry.Len() != 1 {
		t.Fatalf("registry has %d streams, want 1", registry.Len())
	}
	if !strings.HasPrefix(stream.ID(), "42_") {
		t.Fatalf("connection id = %q, want 42_ prefix", stream.ID())
	}
	stream.Close()
	if registry.Len() != 0 {
		t.Fatal("closing the stream must unregister it")
	}
}

func TestConnectEmptyCheckpointNoReplay(t *testing.T) {
	svc, _, _ := newTestService(t, 42)
	svc.cache.Add(sse.Event{ID: "42_1000", Name: "notification", Data: "missed"})

	stream, err := svc.Connect(42, "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer stream.Close()
	drainProbe(t, stream)
	select {
	case ev := <-stream.Events():
		t.Fatalf("unexpected replay event %+v with empty checkpoint", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConnectReplaysMissedEventsAscending(t *testing.T) {
	svc, _, _ := newTestService(t, 42)
	svc.cache.Add(sse.Event{ID: "42_3000", Name: "notification", Data: "third"})
	svc.cache.Add(sse.Event{ID: "42_1000", Name: "notification", Data: "first"})
	svc.cache.Add(sse.Event{ID: "42_2000", Name: "notification", Data: "second"})

	stream, err := svc.Connect(42, "42_1000")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer stream.Close()
	drainProbe(t, stream)

	first := receiveEvent(t, stream)
	second := receiveEvent(t, stream)
	if first.ID != "42_2000" || second.ID != "42_3000" {
		t.Fatalf("replay order = [%s %s], want [42_2000 42_3000]", first.ID, second.ID)
	}
	select {
	case ev := <-stream.Events():
		t.Fatalf("replayed too much: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyPersistsWithoutConnections(t *testing.T) {
	svc, store, _ := newTestService(t, 42)
	svc.Notify(42, "nobody is listening", 1)
	svc.dispatcher.Close()

	n, err := store.GetByID(1)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if n.MemberID != 42 || n.Content != "nobody is listening" || n.Code != 1 || n.IsRead {
		t.Fatalf("persisted record = %+v", n)
	}
}

func TestNotifyUnknownMemberPersistsNothing(t *testing.T) {
	svc, store, _ := newTestService(t) // no members
	svc.Notify(99, "ghost", 1)
	svc.dispatcher.Close()
	if store.created != 0 {
		t.Fatalf("persisted %d records for unknown member, want 0", store.created)
	}
}

func TestDeliverFansOutToAllConnections(t *testing.T) {
	svc, store, _ := newTestService(t, 42)
	c1, _ := svc.Connect(42, "")
	c2, _ := svc.Connect(42, "")
	defer c1.Close()
	defer c2.Close()
	drainProbe(t, c1)
	drainProbe(t, c2)

	svc.deliver(42, "hello", 1)

	for _, s := range []*sse.Stream{c1, c2} {
		ev := receiveEvent(t, s)
		var payload streamPayload
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			t.Fatalf("payload not JSON: %v", err)
		}
		if payload.Content != "hello" || payload.Code != 1 {
			t.Fatalf("payload = %+v", payload)
		}
	}
	if store.created != 1 {
		t.Fatalf("persisted %d records, want 1", store.created)
	}
}

// One broken stream must not block delivery to the others, and must be gone
// from the registry right after the dispatch.
func TestDeliverPrunesBrokenStream(t *testing.T) {
	svc, _, registry := newTestService(t, 42)
	c1, _ := svc.Connect(42, "")
	c2, _ := svc.Connect(42, "")
	c3, _ := svc.Connect(42, "")
	defer c1.Close()
	defer c3.Close()
	drainProbe(t, c1)
	drainProbe(t, c2)
	drainProbe(t, c3)

	// Jam c2: a client that stopped reading eventually fills its buffer and
	// the next push fails.
	for i := 0; ; i++ {
		if err := c2.Send(sse.Event{Data: "filler"}); err != nil {
			break
		}
		if i > 1000 {
			t.Fatal("could not fill c2's buffer")
		}
	}

	svc.deliver(42, "world", 2)

	for _, s := range []*sse.Stream{c1, c3} {
		ev := receiveEvent(t, s)
		if !strings.Contains(ev.Data, "world") {
			t.Fatalf("live stream missed the event: %q", ev.Data)
		}
	}
	found := svc.registry.FindByMemberPrefix(42)
	if len(found) != 2 {
		t.Fatalf("registry has %d streams for member 42 after prune, want 2", len(found))
	}
	if _, ok := found[c2.ID()]; ok {
		t.Fatal("broken stream still present in registry")
	}
	_ = registry
}

// The end-to-end sequence: two live connections receive "hello"; after one
// disconnects only the survivor receives "world".
func TestNotifyScenarioMember42(t *testing.T) {
	svc, store, _ := newTestService(t, 42)
	c1, _ := svc.Connect(42, "")
	c2, _ := svc.Connect(42, "")
	defer c1.Close()
	drainProbe(t, c1)
	drainProbe(t, c2)

	svc.deliver(42, "hello", 1)
	if ev := receiveEvent(t, c1); !strings.Contains(ev.Data, "hello") {
		t.Fatalf("c1 got %q", ev.Data)
	}
	if ev := receiveEvent(t, c2); !strings.Contains(ev.Data, "hello") {
		t.Fatalf("c2 got %q", ev.Data)
	}
	n, err := store.GetByID(1)
	if err != nil || n.MemberID != 42 || n.Content != "hello" || n.Code != 1 || n.IsRead {
		t.Fatalf("persisted record = %+v, err = %v", n, err)
	}

	c2.Close()
	svc.deliver(42, "world", 2)
	if ev := receiveEvent(t, c1); !strings.Contains(ev.Data, "world") {
		t.Fatalf("c1 got %q", ev.Data)
	}
	found := svc.registry.FindByMemberPrefix(42)
	if len(found) != 1 {
		t.Fatalf("registry has %d streams, want only c1", len(found))
	}
	if _, ok := found[c1.ID()]; !ok {
		t.Fatal("surviving stream is not c1")
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t, 42)
	store.Create(&models.Notification{MemberID: 42, Content: "x", Code: 0})

	if err := svc.MarkRead(1); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := svc.MarkRead(1); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	n, _ := store.GetByID(1)
	if !n.IsRead {
		t.Fatal("record not marked read")
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.MarkRead(12345)
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("MarkRead(absent) = %v, want ErrNotificationNotFound", err)
	}
}
