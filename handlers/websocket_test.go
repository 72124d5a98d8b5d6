package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"warehouse-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    []models.WebSocketMessage
	closed  bool
	failing bool

	// released marks the connection as handed back to the websocket pool;
	// any later use is counted in misuse.
	released bool
	misuse   int
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		c.misuse++
	}
	if c.failing {
		return errors.New("broken pipe")
	}
	c.sent = append(c.sent, v.(models.WebSocketMessage))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		c.misuse++
	}
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []models.WebSocketMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.WebSocketMessage(nil), c.sent...)
}

func (c *fakeConn) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
}

func (c *fakeConn) misuseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misuse
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startManager(t *testing.T) (*ClientManager, context.CancelFunc) {
	t.Helper()

	m := NewClientManager()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = m.Start(ctx) }()
	t.Cleanup(cancel)
	return m, cancel
}

func TestClientManagerBroadcast(t *testing.T) {
	m, _ := startManager(t)

	a, b := &fakeConn{}, &fakeConn{}
	m.Register(&Client{ID: "a", Conn: a})
	m.Register(&Client{ID: "b", Conn: b})
	require.Eventually(t, func() bool { return m.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	m.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeSystemInfo})

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(c.messages()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, models.MessageTypeSystemInfo, c.messages()[0].Type)
	}
}

func TestClientManagerDropsFailingClient(t *testing.T) {
	m, _ := startManager(t)

	good, bad := &fakeConn{}, &fakeConn{failing: true}
	m.Register(&Client{ID: "good", Conn: good})
	m.Register(&Client{ID: "bad", Conn: bad})
	require.Eventually(t, func() bool { return m.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	m.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeVehicleFrame})

	require.Eventually(t, func() bool { return m.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, bad.isClosed())
	assert.False(t, good.isClosed())
	assert.Len(t, good.messages(), 1)
}

func TestClientManagerUnregister(t *testing.T) {
	m, _ := startManager(t)

	c := &fakeConn{}
	m.Register(&Client{ID: "a", Conn: c})
	require.Eventually(t, func() bool { return m.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	m.Unregister("a")
	require.Eventually(t, func() bool { return m.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, c.isClosed())

	// unknown ids are ignored
	m.Unregister("nobody")
}

func TestClientManagerShutdown(t *testing.T) {
	m, cancel := startManager(t)

	c := &fakeConn{}
	m.Register(&Client{ID: "a", Conn: c})
	require.Eventually(t, func() bool { return m.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, c.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, m.GetClientCount())

	// registering after shutdown closes the connection instead of blocking
	late := &fakeConn{}
	m.Register(&Client{ID: "late", Conn: late})
	assert.True(t, late.isClosed())
	m.Unregister("late")
}

func TestBroadcastMessageNeverBlocks(t *testing.T) {
	m := NewClientManager()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			m.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeVehicleFrame})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastMessage blocked without a running manager")
	}
}

func TestReloadBroadcasts(t *testing.T) {
	s := newTestServer(t)
	m := s.handler.Manager

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = m.Start(ctx) }()

	c := &fakeConn{}
	m.Register(&Client{ID: "viewer", Conn: c})
	require.Eventually(t, func() bool { return m.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.load(t)

	require.Eventually(t, func() bool {
		for _, msg := range c.messages() {
			if msg.Type == models.MessageTypeDataLoaded {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.handler.Store.ToggleFilter("Scrap"))
	require.Eventually(t, func() bool {
		msgs := c.messages()
		last := msgs[len(msgs)-1]
		if last.Type != models.MessageTypeFilterUpdate {
			return false
		}
		state, ok := last.Data.(models.FilterState)
		return ok && len(state.ActiveFilters) == 3
	}, time.Second, 5*time.Millisecond)
}

func TestUnregisterDuringBroadcastBurst(t *testing.T) {
	m, _ := startManager(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				m.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeVehicleFrame})
			}
		}
	}()

	conns := make([]*fakeConn, 50)
	for i := range conns {
		c := &fakeConn{}
		conns[i] = c
		id := fmt.Sprintf("viewer-%d", i)

		m.Register(&Client{ID: id, Conn: c})
		m.Unregister(id)
		// the websocket handler returns here and the connection is pooled
		c.release()
	}

	close(stop)
	wg.Wait()

	// drain whatever the burst left queued
	m.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeSystemInfo})
	require.Eventually(t, func() bool { return len(m.broadcast) == 0 }, time.Second, 5*time.Millisecond)

	for i, c := range conns {
		assert.Zero(t, c.misuseCount(), "connection %d used after Unregister returned", i)
		assert.True(t, c.isClosed())
	}
	assert.Equal(t, 0, m.GetClientCount())
}

func TestSendInitialState(t *testing.T) {
	s := newTestServer(t)
	s.load(t)

	c := &fakeConn{}
	require.NoError(t, s.handler.sendInitialState(c))

	msgs := c.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.MessageTypeSnapshot, msgs[0].Type)
	assert.Equal(t, models.MessageTypeVehicleFrame, msgs[1].Type)
	frame, ok := msgs[1].Data.(models.FleetFrame)
	require.True(t, ok)
	assert.Len(t, frame.Vehicles, 2)

	broken := &fakeConn{failing: true}
	assert.Error(t, s.handler.sendInitialState(broken))
	assert.Empty(t, broken.messages())
}
