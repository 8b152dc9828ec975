package bridge

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	clientSendBuffer = 16
	writeTimeout     = 2 * time.Second
)

// StateEvent is broadcast to every /events subscriber on each injector state
// transition.
type StateEvent struct {
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// client owns all writes to one connection. Websocket connections allow a
// single concurrent writer, and broadcasts can originate from overlapping
// command handlers, so events are queued and drained by one goroutine.
type client struct {
	conn *websocket.Conn
	send chan StateEvent
	done chan struct{}
}

// Hub fans state events out to websocket subscribers. Slow or dead clients
// are dropped rather than allowed to block a broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) add(conn *websocket.Conn) {
	cl := &client{
		conn: conn,
		send: make(chan StateEvent, clientSendBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[conn] = cl
	h.mu.Unlock()
	go h.writeLoop(cl)
}

// remove detaches and closes the connection. Only the caller that actually
// deleted the entry signals the write loop, so concurrent removals are safe.
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	cl, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	if ok {
		close(cl.done)
		conn.Close()
	}
}

func (h *Hub) writeLoop(cl *client) {
	for {
		select {
		case ev := <-cl.send:
			if err := cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Debug().Err(err).Msg("dropping events subscriber")
				h.remove(cl.conn)
				return
			}
			if err := cl.conn.WriteJSON(ev); err != nil {
				log.Debug().Err(err).Msg("dropping events subscriber")
				h.remove(cl.conn)
				return
			}
		case <-cl.done:
			return
		}
	}
}

// Broadcast queues the event for every subscriber. A subscriber whose queue
// is full is dropped.
func (h *Hub) Broadcast(ev StateEvent) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		targets = append(targets, cl)
	}
	h.mu.Unlock()

	for _, cl := range targets {
		select {
		case cl.send <- ev:
		default:
			log.Debug().Msg("dropping slow events subscriber")
			h.remove(cl.conn)
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
