package handler

import (
	"net/http"
	"strconv"
	"time"

	"pawly/internal/middleware"
	"pawly/internal/repository"
	"pawly/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc  *service.NotificationService
	repo *repository.NotificationRepository
}

func NewNotificationHandler(svc *service.NotificationService, repo *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{svc: svc, repo: repo}
}

// Connect opens the member's server-sent event stream. The client may send
// Last-Event-ID (header, or last_event_id query for EventSource polyfills)
// to replay notifications it missed while disconnected. The handler owns the
// write loop; the stream closes on client disconnect, idle timeout, or write
// failure, and closing unregisters it.
func (h *NotificationHandler) Connect(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	lastEventID := c.GetHeader("Last-Event-ID")
	if lastEventID == "" {
		lastEventID = c.Query("last_event_id")
	}

	stream, err := h.svc.Connect(memberID, lastEventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open notification stream"})
		return
	}
	defer stream.Close()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no") // nginx: do not buffer the stream
	c.Writer.WriteHeader(http.StatusOK)

	idle := time.NewTimer(stream.IdleTimeout())
	defer idle.Stop()
	ctx := c.Request.Context()
	for {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				return
			}
			if _, err := c.Writer.Write(ev.Marshal()); err != nil {
				return
			}
			c.Writer.Flush()
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(stream.IdleTimeout())
		case <-idle.C:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListByMemberID(memberID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.svc.MarkRead(uint(id)); err != nil {
		if err == service.ErrNotificationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
