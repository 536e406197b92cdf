package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"dailyread/middleware"
	"dailyread/models"
	"dailyread/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hubService *services.HubService
	cache      *services.QueryCache
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler accepts same-origin upgrades plus the given origins.
func NewWebSocketHandler(hubService *services.HubService, cache *services.QueryCache, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &WebSocketHandler{
		hubService: hubService,
		cache:      cache,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed[origin] {
					return true
				}
				return origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

func (wh *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No session"})
		return
	}

	conn, err := wh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := models.NewClient(wh.hubService.GetHub(), conn, sessionID)
	log.Printf("WebSocket client %s connected for session %s", client.ID, sessionID)

	client.Hub.Register <- client
	go wh.writePump(client)
	go wh.readPump(client)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

func (wh *WebSocketHandler) readPump(client *models.Client) {
	defer func() {
		client.Hub.Unregister <- client
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close error for client %s: %v", client.ID, err)
			}
			return
		}

		var wsMessage struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshaling WebSocket message from client %s: %v", client.ID, err)
			continue
		}

		switch wsMessage.Type {
		case "client_connect":
			wh.hubService.SendToClient(client, "client_connected", gin.H{
				"client_id": client.ID,
				"settled":   wh.settled(client, wsMessage.Data),
			})

		default:
			log.Printf("Unknown message type '%s' received from client %s", wsMessage.Type, client.ID)
		}
	}
}

// settled lists the pending keys of a connecting page that resolved after
// it rendered. Their events went out before the client was registered.
func (wh *WebSocketHandler) settled(client *models.Client, raw json.RawMessage) []string {
	var payload models.ConnectPayload
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil || len(payload.Pending) == 0 {
		return []string{}
	}
	since, err := time.Parse(time.RFC3339Nano, payload.Rendered)
	if err != nil {
		log.Printf("Client %s sent an unreadable render time %q", client.ID, payload.Rendered)
		return []string{}
	}
	return wh.cache.Settled(context.Background(), payload.Pending, since)
}

func (wh *WebSocketHandler) writePump(client *models.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("Error getting writer for client %s: %v", client.ID, err)
				return
			}
			w.Write(message)

			// Queued messages go out in the same frame, one per line.
			n := len(client.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.Send)
			}

			if err := w.Close(); err != nil {
				log.Printf("Error closing writer for client %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Error sending ping to client %s: %v", client.ID, err)
				return
			}
		}
	}
}
