package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"biometric-insights/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *ReportServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client] = struct{}{}
			s.clientsMu.Unlock()

			// Send the current report on connect
			s.sendInitial(client)

		case client := <-s.subscribe:
			s.clientsMu.RLock()
			_, connected := s.clients[client]
			s.clientsMu.RUnlock()
			if connected {
				s.sendInitial(client)
			}

		case client := <-s.unregister:
			s.dropClient(client)

		case event := <-s.broadcast:
			s.clientsMu.RLock()
			targets := make([]*Client, 0, len(s.clients))
			for client := range s.clients {
				targets = append(targets, client)
			}
			s.clientsMu.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- client.view(event):
				default:
					// Client too slow, disconnect to prevent Hub blocking
					s.dropClient(client)
				}
			}

		case <-s.quit:
			s.clientsMu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()
			return
		}
	}
}

// sendInitial queues the current report for one client. Only the hub loop
// calls it, so send is never closed underneath.
func (s *ReportServer) sendInitial(client *Client) {
	latest, timeline := s.snapshot()
	if latest == nil {
		return
	}
	event := client.view(&models.MReportEvent{
		Type:      models.EventInitial,
		Report:    latest,
		Timeline:  timeline,
		Timestamp: latest.GeneratedAt.Unix(),
	})
	select {
	case client.send <- event:
	default:
		s.dropClient(client)
	}
}

func (s *ReportServer) dropClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *ReportServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MReportEvent, 16),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage answers "subscribe" with the current report and runs
// the pipeline on "refresh". Unparseable messages close the connection.
func (s *ReportServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "subscribe":
		client.includeTimeline.Store(cmd.IncludeTimeline)
		select {
		case s.subscribe <- client:
		case <-s.quit:
		}

	case "refresh":
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		start := time.Now()
		if _, err := s.Refresh(ctx); err != nil {
			s.Logger.Warning("Refresh requested over websocket failed: %v", err)
			return
		}
		s.Logger.Info("Refresh requested over websocket done in %s", time.Since(start).Round(time.Millisecond))
	}
}
