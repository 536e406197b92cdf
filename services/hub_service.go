package services

import (
	"encoding/json"
	"log"

	"dailyread/metrics"
	"dailyread/models"
)

// HubService fans cache events out to every open browser tab and draft
// changes out to the tabs of one session.
type HubService struct {
	hub *models.Hub
}

func NewHubService() *HubService {
	hub := models.NewHub()
	service := &HubService{hub: hub}

	go service.Run()

	return service
}

func (h *HubService) GetHub() *models.Hub {
	return h.hub
}

func (h *HubService) Run() {
	for {
		select {
		case client := <-h.hub.Register:
			h.registerClient(client)

		case client := <-h.hub.Unregister:
			h.unregisterClient(client)

		case message := <-h.hub.Broadcast:
			h.broadcastToAll(message)

		case direct := <-h.hub.Direct:
			h.sendDirect(direct)
		}
	}
}

func (h *HubService) registerClient(client *models.Client) {
	h.hub.Clients[client] = true
	h.hub.SessionClients[client.SessionID] = append(h.hub.SessionClients[client.SessionID], client)
	metrics.WSClients.Inc()
}

func (h *HubService) unregisterClient(client *models.Client) {
	if _, ok := h.hub.Clients[client]; !ok {
		return
	}
	h.removeClient(client)
	log.Printf("Client %s unregistered for session: %s", client.ID, client.SessionID)
}

func (h *HubService) removeClient(client *models.Client) {
	delete(h.hub.Clients, client)
	close(client.Send)
	metrics.WSClients.Dec()

	clients := h.hub.SessionClients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.hub.SessionClients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.hub.SessionClients[client.SessionID]) == 0 {
		delete(h.hub.SessionClients, client.SessionID)
	}
}

func (h *HubService) broadcastToAll(message []byte) {
	for client := range h.hub.Clients {
		h.deliver(client, message)
	}
}

func (h *HubService) sendDirect(direct models.DirectMessage) {
	if direct.Client != nil {
		if _, ok := h.hub.Clients[direct.Client]; ok {
			h.deliver(direct.Client, direct.Data)
		}
		return
	}
	// deliver may shrink the session slice, so walk a copy.
	clients := append([]*models.Client(nil), h.hub.SessionClients[direct.SessionID]...)
	for _, client := range clients {
		h.deliver(client, direct.Data)
	}
}

// deliver drops a client whose buffer is full instead of blocking the hub.
func (h *HubService) deliver(client *models.Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Printf("Send buffer full for client %s, dropping it", client.ID)
		h.removeClient(client)
	}
}

// Broadcast queues a typed message for every connected client.
func (h *HubService) Broadcast(messageType string, data interface{}) {
	messageBytes, err := json.Marshal(models.WSMessage{Type: messageType, Data: data})
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}
	h.hub.Broadcast <- messageBytes
}

// SendToClient queues a message for one client. Messages for a client the
// hub has already dropped are discarded.
func (h *HubService) SendToClient(client *models.Client, messageType string, data interface{}) {
	h.direct(models.DirectMessage{Client: client}, messageType, data)
}

// SendToSession queues a message for every open tab of one browser session.
func (h *HubService) SendToSession(sessionID, messageType string, data interface{}) {
	h.direct(models.DirectMessage{SessionID: sessionID}, messageType, data)
}

func (h *HubService) direct(msg models.DirectMessage, messageType string, data interface{}) {
	messageBytes, err := json.Marshal(models.WSMessage{Type: messageType, Data: data})
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}
	msg.Data = messageBytes
	h.hub.Direct <- msg
}

// Follow forwards every event of cache to the connected clients.
func (h *HubService) Follow(cache *QueryCache) func() {
	return cache.Subscribe(func(event models.CacheEvent) {
		h.Broadcast(string(event.Type), event)
	})
}
