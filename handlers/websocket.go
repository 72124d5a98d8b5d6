package handlers

import (
	"context"
	"sync"
	"time"

	"warehouse-backend/models"
	"warehouse-backend/services"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageWriter is the part of a WebSocket connection the manager needs.
type MessageWriter interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	ID   string
	Conn MessageWriter
}

// unregisterRequest is acknowledged once the client is gone from the map.
type unregisterRequest struct {
	id      string
	removed chan struct{}
}

// ClientManager - 웹 클라이언트 관리 및 브로드캐스트
type ClientManager struct {
	clients    map[string]*Client
	broadcast  chan models.WebSocketMessage
	register   chan *Client
	unregister chan unregisterRequest
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:    make(map[string]*Client),
		broadcast:  make(chan models.WebSocketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan unregisterRequest),
		done:       make(chan struct{}),
	}
}

// Start runs the manager loop until ctx is cancelled, then closes every
// remaining connection.
func (manager *ClientManager) Start(ctx context.Context) error {
	defer close(manager.done)

	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return nil

		case client := <-manager.register:
			manager.mutex.Lock()
			manager.clients[client.ID] = client
			manager.mutex.Unlock()
			services.Logger().Info("client registered", zap.String("client", client.ID))

		case req := <-manager.unregister:
			manager.remove(req.id)
			close(req.removed)

		case message := <-manager.broadcast:
			manager.handleBroadcast(message)
		}
	}
}

func (manager *ClientManager) handleBroadcast(message models.WebSocketMessage) {
	manager.mutex.RLock()
	var failed []string
	for id, client := range manager.clients {
		if err := client.Conn.WriteJSON(message); err != nil {
			services.Logger().Warn("send failed", zap.String("client", id), zap.Error(err))
			failed = append(failed, id)
		}
	}
	manager.mutex.RUnlock()

	for _, id := range failed {
		manager.remove(id)
	}
}

func (manager *ClientManager) remove(id string) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if client, ok := manager.clients[id]; ok {
		delete(manager.clients, id)
		_ = client.Conn.Close()
		services.Logger().Info("client unregistered", zap.String("client", id))
	}
}

func (manager *ClientManager) closeAll() {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	for id, client := range manager.clients {
		_ = client.Conn.Close()
		delete(manager.clients, id)
	}
}

// BroadcastMessage queues msg for every client. Frames are dropped rather
// than blocking the simulation loop when the queue is full.
func (manager *ClientManager) BroadcastMessage(msg models.WebSocketMessage) {
	select {
	case manager.broadcast <- msg:
	default:
		services.Logger().Debug("broadcast queue full, dropping message", zap.String("type", msg.Type))
	}
}

// Register adds a client. After the manager has stopped the connection is
// closed instead.
func (manager *ClientManager) Register(client *Client) {
	select {
	case manager.register <- client:
	case <-manager.done:
		_ = client.Conn.Close()
	}
}

// Unregister removes a client and returns only after the manager loop has
// dropped it, so no broadcast touches the connection afterwards.
func (manager *ClientManager) Unregister(id string) {
	req := unregisterRequest{id: id, removed: make(chan struct{})}
	select {
	case manager.unregister <- req:
		<-req.removed
	case <-manager.done:
	}
}

func (manager *ClientManager) GetClientCount() int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return len(manager.clients)
}

// HandleWebClientWebSocket serves /websocket/web: it sends the current state,
// then applies filter, hover and retry messages from the viewer.
func (h *Handler) HandleWebClientWebSocket(c *websocket.Conn) {
	client := &Client{
		ID:   uuid.NewString(),
		Conn: c,
	}

	// 연결 직후 현재 상태 전송 (등록 전이라 브로드캐스트와 겹치지 않음)
	if err := h.sendInitialState(c); err != nil {
		services.Logger().Debug("initial state not delivered", zap.String("client", client.ID), zap.Error(err))
		return
	}

	h.Manager.Register(client)
	defer h.Manager.Unregister(client.ID)

	for {
		var msg models.ClientMessage
		if err := c.ReadJSON(&msg); err != nil {
			services.Logger().Debug("web client read ended", zap.String("client", client.ID), zap.Error(err))
			return
		}

		if err := h.handleClientMessage(msg); err != nil {
			services.Logger().Warn("client message rejected",
				zap.String("client", client.ID), zap.String("type", msg.Type), zap.Error(err))
		}
	}
}

// sendInitialState writes the store snapshot and the current fleet frame.
func (h *Handler) sendInitialState(w MessageWriter) error {
	now := time.Now().UnixMilli()
	if err := w.WriteJSON(models.WebSocketMessage{
		Type:      models.MessageTypeSnapshot,
		Data:      h.Store.Snapshot(),
		Timestamp: now,
	}); err != nil {
		return err
	}
	return w.WriteJSON(models.WebSocketMessage{
		Type:      models.MessageTypeVehicleFrame,
		Data:      models.FleetFrame{Vehicles: h.Fleet.Frames()},
		Timestamp: now,
	})
}

// handleClientMessage applies one inbound viewer message. Resulting state
// changes reach every client through the store listener.
func (h *Handler) handleClientMessage(msg models.ClientMessage) error {
	switch msg.Type {
	case models.MessageTypeToggleFilter:
		return h.Store.ToggleFilter(msg.Condition)
	case models.MessageTypeSetFilters:
		return h.Store.SetActiveFilters(msg.Filters)
	case models.MessageTypeSelectAllFilters:
		h.Store.SelectAllFilters()
	case models.MessageTypeClearFilters:
		h.Store.ClearFilters()
	case models.MessageTypeHoverItem:
		serial := ""
		if msg.SerialNo != nil {
			serial = *msg.SerialNo
		}
		h.Store.SetHoveredItem(serial)
	case models.MessageTypeRetryLoad:
		go func() {
			_ = h.Reload(context.Background())
		}()
	default:
		return errUnknownMessage(msg.Type)
	}
	return nil
}
