// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/panorama/internal/config"
)

const wsSendBuffer = 16

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsResponse is sent to websocket clients for anything that is not a snapshot.
type wsResponse struct {
	Type    string `json:"type"` // "ack", "error"
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

type wsClient struct {
	id   uuid.UUID
	send chan []byte
}

// webServer keeps the latest offsets snapshot and fans it out to websocket
// clients. Control commands from clients are handed to control.
type webServer struct {
	mu      sync.RWMutex
	last    []byte
	clients map[uuid.UUID]*wsClient

	control func([]byte) error
}

func newWebServer(control func([]byte) error) *webServer {
	return &webServer{
		clients: make(map[uuid.UUID]*wsClient),
		control: control,
	}
}

func (s *webServer) routes(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/offsets", s.handleOffsets)
	mux.HandleFunc("/ws/offsets", s.handleWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// update stores a snapshot payload and broadcasts it. Slow clients drop
// frames rather than block the MQTT callback.
func (s *webServer) update(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = payload
	for id, c := range s.clients {
		select {
		case c.send <- payload:
		default:
			log.Printf("web: client %s is slow, dropping frame", id)
		}
	}
}

func (s *webServer) handleOffsets(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(last); err != nil {
		log.Printf("web: write error: %v", err)
	}
}

func (s *webServer) register() *wsClient {
	c := &wsClient{id: uuid.New(), send: make(chan []byte, wsSendBuffer)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
	if s.last != nil {
		c.send <- s.last
	}
	return c
}

func (s *webServer) unregister(c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
}

func (s *webServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := s.register()
	defer s.unregister(c)
	log.Printf("web: client %s connected", c.id)

	done := make(chan struct{})
	defer close(done)

	// writer: the only goroutine writing to conn
	go func() {
		for {
			select {
			case <-done:
				return
			case payload := <-c.send:
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					log.Printf("web: client %s write error: %v", c.id, err)
					return
				}
			}
		}
	}()

	for {
		var cmd ControlCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: client %s read error: %v", c.id, err)
			}
			break
		}
		s.reply(c, s.forward(cmd))
	}
	log.Printf("web: client %s disconnected", c.id)
}

func (s *webServer) forward(cmd ControlCommand) wsResponse {
	if err := cmd.validate(); err != nil {
		return wsResponse{Type: "error", Action: cmd.Action, Message: err.Error()}
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return wsResponse{Type: "error", Action: cmd.Action, Message: err.Error()}
	}
	if err := s.control(payload); err != nil {
		return wsResponse{Type: "error", Action: cmd.Action, Message: err.Error()}
	}
	return wsResponse{Type: "ack", Action: cmd.Action}
}

func (s *webServer) reply(c *wsClient, resp wsResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("web: response marshal error: %v", err)
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("web: client %s is slow, dropping %s response", c.id, resp.Type)
	}
}

// RunWeb serves the latest offsets over HTTP and websocket, and forwards
// control commands from the browser to the tracker.
func RunWeb() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	srv := newWebServer(controlPublisher(client, cfg))

	if err := subscribe(client, cfg.TopicOffsets, "web", srv.update); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, srv.routes("web"))
}
