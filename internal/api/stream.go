package api

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/view"
)

// Constants for the snapshot stream.
const (
	heartbeatInterval = 15 * time.Second // Heartbeat interval for keep-alive
	heartbeatComment  = ":heartbeat\n\n" // SSE comment for keep-alive
	clientBufferSize  = 8                // Events buffered per client before drops
)

// StreamEvent is one server-sent event on the snapshot stream.
type StreamEvent struct {
	Type string
	Data any
}

// snapshotEvent shapes a published snapshot for the stream.
func snapshotEvent(snap *domain.Snapshot) StreamEvent {
	return StreamEvent{
		Type: "snapshot",
		Data: SnapshotEventData{
			Cycle:       snap.Cycle,
			GeneratedAt: snap.GeneratedAt,
			Summaries:   view.Summaries(snap),
		},
	}
}

// Broker fans published snapshots out to connected stream clients.
type Broker struct {
	log logger.Interface

	mu      sync.Mutex
	clients map[string]chan StreamEvent
}

// NewBroker creates a broker with no clients.
func NewBroker(log logger.Interface) *Broker {
	return &Broker{
		log:     log,
		clients: make(map[string]chan StreamEvent),
	}
}

// Subscribe registers a new client and returns its ID and event channel.
// The channel is closed by Unsubscribe.
func (b *Broker) Subscribe() (string, <-chan StreamEvent) {
	id := uuid.NewString()
	ch := make(chan StreamEvent, clientBufferSize)

	b.mu.Lock()
	b.clients[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[id]; ok {
		delete(b.clients, id)
		close(ch)
	}
}

// Publish delivers an event to every connected client. A client whose
// buffer is full misses the event rather than blocking the publisher.
func (b *Broker) Publish(event StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.clients {
		select {
		case ch <- event:
		default:
			b.log.Debug("Dropping stream event for slow client", "client_id", id)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.clients)
}

// StreamHandler streams refresh snapshots over server-sent events.
type StreamHandler struct {
	broker *Broker
	coord  Coordinator
	log    logger.Interface
}

// NewStreamHandler creates a new snapshot stream handler.
func NewStreamHandler(broker *Broker, coord Coordinator, log logger.Interface) *StreamHandler {
	return &StreamHandler{
		broker: broker,
		coord:  coord,
		log:    log,
	}
}

// Stream handles GET /api/v1/stream.
// Sends a connected event, then the current snapshot when one exists,
// then a snapshot event after every refresh until the client leaves.
func (h *StreamHandler) Stream(c *gin.Context) {
	clientID, events := h.broker.Subscribe()
	defer h.broker.Unsubscribe(clientID)

	setSSEHeaders(c.Writer)
	c.Writer.Flush()

	connected := StreamEvent{Type: "connected", Data: gin.H{"client_id": clientID}}
	if err := writeEvent(c.Writer, connected); err != nil {
		return
	}

	// A client that connects between cycles still sees the current state.
	if snap := h.coord.Snapshot(); snap != nil {
		if err := writeEvent(c.Writer, snapshotEvent(snap)); err != nil {
			return
		}
	}

	h.log.Debug("Snapshot stream started",
		"client_id", clientID,
		"client_ip", c.ClientIP(),
	)

	h.stream(c, events)

	h.log.Debug("Snapshot stream ended", "client_id", clientID)
}

// stream forwards broker events until the client disconnects.
func (h *StreamHandler) stream(c *gin.Context, events <-chan StreamEvent) {
	ctx := c.Request.Context()

	heartbeatTicker := time.NewTicker(heartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeatTicker.C:
			if !h.sendHeartbeat(c.Writer) {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				h.log.Debug("SSE write failed", "error", err)
				return
			}
		}
	}
}

// sendHeartbeat sends a heartbeat comment to keep the connection alive.
func (h *StreamHandler) sendHeartbeat(w gin.ResponseWriter) bool {
	if _, err := w.WriteString(heartbeatComment); err != nil {
		return false
	}
	w.Flush()
	return true
}

// setSSEHeaders prepares the response for server-sent events.
func setSSEHeaders(w gin.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// writeEvent writes one SSE frame and flushes it.
func writeEvent(w gin.ResponseWriter, event StreamEvent) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
		return err
	}

	w.Flush()
	return nil
}
