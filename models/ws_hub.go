package models

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub is owned by one goroutine. Only that goroutine writes to or closes a
// client's Send channel; everyone else goes through Broadcast or Direct.
type Hub struct {
	Clients        map[*Client]bool
	Broadcast      chan []byte
	Direct         chan DirectMessage
	Register       chan *Client
	Unregister     chan *Client
	SessionClients map[string][]*Client
}

// DirectMessage targets one client, or every tab of SessionID when Client is nil.
type DirectMessage struct {
	Client    *Client
	SessionID string
	Data      []byte
}

// Client is one open browser tab.
type Client struct {
	ID        string
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
}

type WSMessage struct {
	Type     string      `json:"type"`
	Data     interface{} `json:"data"`
	ClientID string      `json:"client_id,omitempty"`
}

// ConnectPayload is the data of a client_connect message: the keys the page
// rendered as loading and when it rendered them.
type ConnectPayload struct {
	Pending  []string `json:"pending"`
	Rendered string   `json:"rendered"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:        make(map[*Client]bool),
		Broadcast:      make(chan []byte, 64),
		Direct:         make(chan DirectMessage, 64),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		SessionClients: make(map[string][]*Client),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		ID:        uuid.New().String(),
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: sessionID,
	}
}
