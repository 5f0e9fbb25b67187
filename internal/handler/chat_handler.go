package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"pawly/internal/domain"
	"pawly/internal/middleware"
	"pawly/internal/repository"
	"pawly/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatRepo   *repository.ChatRepository
	memberRepo *repository.MemberRepository
	notifSvc   *service.NotificationService
}

func NewChatHandler(chatRepo *repository.ChatRepository, memberRepo *repository.MemberRepository, notifSvc *service.NotificationService) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, memberRepo: memberRepo, notifSvc: notifSvc}
}

// GetRoom returns (creating if needed) the 1:1 room with another member.
func (h *ChatHandler) GetRoom(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	otherID, err := strconv.ParseUint(c.Query("member_id"), 10, 64)
	if err != nil || otherID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id required"})
		return
	}
	if uint(otherID) == memberID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}
	if _, err := h.memberRepo.GetByID(uint(otherID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	room, err := h.chatRepo.GetOrCreateRoom(memberID, uint(otherID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "room lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// GetMessages returns the room's history, newest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	room, err := h.chatRepo.GetRoom(uint(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if room.MemberA != memberID && room.MemberB != memberID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not part of this room"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.chatRepo.ListMessages(room.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

// notifyPeer raises a notification for the other side of the room when they
// have no live connection in it.
func (h *ChatHandler) notifyPeer(roomMemberA, roomMemberB, senderID uint, preview string) {
	peerID := roomMemberA
	if peerID == senderID {
		peerID = roomMemberB
	}
	sender, err := h.memberRepo.GetByID(senderID)
	nickname := "Someone"
	if err == nil {
		nickname = sender.Nickname
	}
	if len(preview) > 60 {
		preview = preview[:60] + "..."
	}
	h.notifSvc.Notify(peerID, fmt.Sprintf("%s: %s", nickname, preview), domain.NotifyCodeChatMessage)
}
