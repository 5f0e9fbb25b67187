package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"pawly/config"
	"pawly/internal/models"
	"pawly/internal/sse"

	"gorm.io/gorm"
)

var (
	ErrConnectionSetup      = errors.New("could not set up notification stream")
	ErrMemberNotFound       = errors.New("member not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationStore is the persistence surface the service needs; satisfied
// by repository.NotificationRepository.
type NotificationStore interface {
	Create(n *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	MarkRead(id uint) error
}

// MemberStore resolves dispatch recipients; satisfied by
// repository.MemberRepository.
type MemberStore interface {
	GetByID(id uint) (*models.Member, error)
}

// NotificationService owns the real-time delivery path: opening streams,
// replaying missed events on reconnect, and fanning new notifications out to
// every live stream of the recipient. Delivery is best effort; the persisted
// record is the durable truth.
type NotificationService struct {
	cfg        config.StreamConfig
	registry   *sse.Registry
	cache      *sse.EventCache
	store      NotificationStore
	members    MemberStore
	dispatcher *Dispatcher
}

func NewNotificationService(cfg config.StreamConfig, registry *sse.Registry, cache *sse.EventCache, store NotificationStore, members MemberStore, dispatcher *Dispatcher) *NotificationService {
	return &NotificationService{
		cfg:        cfg,
		registry:   registry,
		cache:      cache,
		store:      store,
		members:    members,
		dispatcher: dispatcher,
	}
}

// streamPayload is what goes over the wire in each notification event.
type streamPayload struct {
	NotificationID uint   `json:"notification_id"`
	Content        string `json:"content"`
	Code           int    `json:"code"`
	CreatedAt      string `json:"created_at"`
}

// Connect opens a new push stream for the member and registers it. When
// lastEventID is non-empty, cached events newer than that checkpoint are
// replayed onto the new stream in dispatch order, so a reconnecting client
// recovers what it missed while away.
func (s *NotificationService) Connect(memberID uint, lastEventID string) (*sse.Stream, error) {
	connectionID := sse.EventID(memberID)
	stream := sse.NewStream(connectionID, s.cfg.IdleTimeout, s.cfg.SendBuffer)
	stream.OnClose(func() {
		s.registry.Unregister(connectionID)
	})
	s.registry.Register(connectionID, stream)

	// Probe event right away: proxies drop streams that stay silent, and the
	// client learns its connection id.
	probe := sse.Event{ID: connectionID, Name: "connect", Data: "notification stream connected"}
	if err := stream.Send(probe); err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionSetup, err)
	}

	if lastEventID != "" {
		for _, ev := range s.cache.After(memberID, lastEventID) {
			if err := stream.Send(ev); err != nil {
				log.Printf("[notify] replay to %s stopped: %v", connectionID, err)
				break
			}
		}
	}
	return stream, nil
}

// Notify raises a notification for the member asynchronously. The caller is
// never blocked by, or failed by, the fan-out.
func (s *NotificationService) Notify(memberID uint, content string, code int) {
	if ok := s.dispatcher.Submit(func() { s.deliver(memberID, content, code) }); !ok {
		log.Printf("[notify] dispatch queue full, dropped notification for member %d", memberID)
	}
}

// deliver runs on a dispatcher worker: persist first, then push to whatever
// live streams exist. One broken stream is pruned and the loop carries on.
func (s *NotificationService) deliver(memberID uint, content string, code int) {
	member, err := s.members.GetByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[notify] %v: member %d", ErrMemberNotFound, memberID)
		} else {
			log.Printf("[notify] member lookup failed: %v", err)
		}
		return
	}

	n := &models.Notification{MemberID: member.ID, Content: content, Code: code}
	if err := s.store.Create(n); err != nil {
		log.Printf("[notify] persist failed for member %d: %v", member.ID, err)
		return
	}

	data, _ := json.Marshal(streamPayload{
		NotificationID: n.ID,
		Content:        n.Content,
		Code:           n.Code,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	})
	ev := sse.Event{ID: sse.EventID(member.ID), Name: "notification", Data: string(data)}
	s.cache.Add(ev)

	for id, stream := range s.registry.FindByMemberPrefix(member.ID) {
		if err := stream.Send(ev); err != nil {
			s.registry.Unregister(id)
			stream.Close()
			log.Printf("[notify] push to %s failed, pruned: %v", id, err)
		}
	}
}

// MarkRead transitions the record to read. Marking an already-read record
// again stays read and is not an error.
func (s *NotificationService) MarkRead(notificationID uint) error {
	if _, err := s.store.GetByID(notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return s.store.MarkRead(notificationID)
}
