package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"pawly/config"
	"pawly/internal/auth"
	"pawly/internal/models"
	"pawly/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type inboundChatMessage struct {
	Content string `json:"content"`
}

type outboundChatMessage struct {
	Type      string `json:"type"`
	RoomID    uint   `json:"room_id"`
	SenderID  uint   `json:"sender_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// UpgradeChatWS upgrades to WebSocket for chat; query: token, room_id. The
// member must belong to the room. Messages are persisted, broadcast to the
// room, and raised as a notification when the peer is not in the room.
func UpgradeChatWS(cfg *config.JWTConfig, chatHub *ws.ChatHub, chatHandler *ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		roomIDStr := c.Query("room_id")
		if token == "" || roomIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and room_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		roomID64, err := strconv.ParseUint(roomIDStr, 10, 64)
		if err != nil || roomID64 == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_id"})
			return
		}
		room, err := chatHandler.chatRepo.GetRoom(uint(roomID64))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if claims.MemberID != room.MemberA && claims.MemberID != room.MemberB {
			c.JSON(http.StatusForbidden, gin.H{"error": "not part of this room"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &ws.Client{
			MemberID: claims.MemberID,
			Send:     make(chan []byte, 256),
		}
		wsRoom := chatHub.GetOrCreateRoom(room.ID)
		wsRoom.Join(client)
		defer client.Close()

		go chatWritePump(client, conn)

		conn.SetReadDeadline(time.Now().Add(chatPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(chatPongWait))
			return nil
		})
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var in inboundChatMessage
			if err := json.Unmarshal(raw, &in); err != nil || in.Content == "" {
				continue
			}
			msg := &models.ChatMessage{
				RoomID:   room.ID,
				SenderID: claims.MemberID,
				Content:  in.Content,
			}
			if err := chatHandler.chatRepo.CreateMessage(msg); err != nil {
				continue
			}
			out := outboundChatMessage{
				Type:      "message",
				RoomID:    room.ID,
				SenderID:  claims.MemberID,
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt.Format(time.RFC3339),
			}
			wsRoom.Broadcast(client, out)

			peerID := room.MemberA
			if peerID == claims.MemberID {
				peerID = room.MemberB
			}
			if !wsRoom.HasMember(peerID) {
				chatHandler.notifyPeer(room.MemberA, room.MemberB, claims.MemberID, in.Content)
			}
		}
	}
}

// chatWritePump copies messages from client.Send to the connection.
func chatWritePump(c *ws.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(chatPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
