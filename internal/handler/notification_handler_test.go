package handler

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pawly/config"
	"pawly/internal/models"
	"pawly/internal/service"
	"pawly/internal/sse"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryNotificationStore struct {
	rows   map[uint]*models.Notification
	nextID uint
}

func (f *memoryNotificationStore) Create(n *models.Notification) error {
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	f.rows[n.ID] = n
	return nil
}

func (f *memoryNotificationStore) GetByID(id uint) (*models.Notification, error) {
	n, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (f *memoryNotificationStore) MarkRead(id uint) error {
	if n, ok := f.rows[id]; ok {
		n.IsRead = true
	}
	return nil
}

type memoryMemberStore struct {
	members map[uint]*models.Member
}

func (f *memoryMemberStore) GetByID(id uint) (*models.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

// setupStreamServer builds a gin engine with the SSE connect route behind a
// test middleware that reads the member id from a header instead of a JWT.
func setupStreamServer(t *testing.T) (*httptest.Server, *sse.EventCache, *service.NotificationService) {
	t.Helper()
	cfg := config.StreamConfig{
		IdleTimeout:     time.Minute,
		SendBuffer:      16,
		ReplayCacheSize: 32,
		ReplayCacheTTL:  time.Hour,
		DispatchWorkers: 1,
		DispatchQueue:   16,
	}
	registry := sse.NewRegistry()
	cache := sse.NewEventCache(cfg.ReplayCacheSize, cfg.ReplayCacheTTL)
	dispatcher := service.NewDispatcher(cfg.DispatchWorkers, cfg.DispatchQueue)
	t.Cleanup(dispatcher.Close)
	store := &memoryNotificationStore{rows: make(map[uint]*models.Notification)}
	members := &memoryMemberStore{members: map[uint]*models.Member{42: {ID: 42, Nickname: "tester"}}}
	svc := service.NewNotificationService(cfg, registry, cache, store, members, dispatcher)

	h := NewNotificationHandler(svc, nil)
	r := gin.New()
	asMember := func(c *gin.Context) {
		c.Set("member_id", uint(42))
		c.Next()
	}
	r.GET("/connect", asMember, h.Connect)
	r.PATCH("/notifications/:id/read", asMember, h.MarkRead)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, cache, svc
}

// readFrame reads one SSE frame (up to the blank line separator).
func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading frame: %v", err)
		}
		if line == "\n" {
			return b.String()
		}
		b.WriteString(line)
	}
}

func TestConnectServesProbeFrame(t *testing.T) {
	srv, _, _ := setupStreamServer(t)

	resp, err := http.Get(srv.URL + "/connect")
	if err != nil {
		t.Fatalf("GET /connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}
	frame := readFrame(t, bufio.NewReader(resp.Body))
	if !strings.Contains(frame, "event: connect") {
		t.Fatalf("first frame is not the probe: %q", frame)
	}
	if !strings.Contains(frame, "id: 42_") {
		t.Fatalf("probe frame missing connection id: %q", frame)
	}
}

func TestConnectReplaysAfterCheckpoint(t *testing.T) {
	srv, cache, _ := setupStreamServer(t)
	cache.Add(sse.Event{ID: "42_1000", Name: "notification", Data: "old"})
	cache.Add(sse.Event{ID: "42_2000", Name: "notification", Data: "missed"})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/connect", nil)
	req.Header.Set("Last-Event-ID", "42_1000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /connect: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	probe := readFrame(t, reader)
	if !strings.Contains(probe, "event: connect") {
		t.Fatalf("first frame is not the probe: %q", probe)
	}
	replay := readFrame(t, reader)
	if !strings.Contains(replay, "id: 42_2000") || !strings.Contains(replay, "data: missed") {
		t.Fatalf("replay frame = %q, want event 42_2000", replay)
	}
}

func TestConnectPushesLiveNotification(t *testing.T) {
	srv, _, svc := setupStreamServer(t)

	resp, err := http.Get(srv.URL + "/connect")
	if err != nil {
		t.Fatalf("GET /connect: %v", err)
	}
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)
	readFrame(t, reader) // probe

	svc.Notify(42, "hello", 1)

	frame := readFrame(t, reader)
	if !strings.Contains(frame, "event: notification") || !strings.Contains(frame, "hello") {
		t.Fatalf("live frame = %q, want notification with content hello", frame)
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	srv, _, _ := setupStreamServer(t)

	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/notifications/999/read", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH read: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
