package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/hudsonhicksoffish/the-click-continued/internal/comm"
	"github.com/hudsonhicksoffish/the-click-continued/internal/ws"
)

type Handler struct {
	upgrader websocket.Upgrader
	ws       *ws.Ws
	started  time.Time
}

type JackpotResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

type HealthResponse struct {
	Status  string  `json:"status"`
	Clients int     `json:"clients"`
	Uptime  float64 `json:"uptime"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHandler(s *ws.Ws) *Handler {
	h := &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ws:      s,
		started: time.Now(),
	}
	return h
}

// HandleWebSocket upgrades the request and hands the connection to the
// session manager.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	socketId := uuid.New().String()
	h.ws.StoreConnection(socketId, conn)

	log.Infof("New WebSocket connection established: %s", socketId)

	go h.handleConnection(conn, socketId)
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId string) {
	// Ensure cleanup happens when connection closes
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		conn.Close()
		h.ws.HandleDisconnect(socketId)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			break
		}

		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, &message); err != nil {
			log.Errorf("Failed to unmarshal message from socket %s: %v", socketId, err)
			h.ws.SendError(socketId, "Invalid message format")
			continue // Don't break, just skip this message
		}

		log.Debugf("Received message from socket %s: type=%s", socketId, message.Type)

		h.ws.SocketMessage(socketId, message)
	}
}

// JackpotHandler returns the current jackpot value. Read-only.
func (h *Handler) JackpotHandler(w http.ResponseWriter, r *http.Request) {
	jackpot, err := h.ws.Jackpot.GetJackpot()
	if err != nil {
		log.Errorf("Error fetching jackpot: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch jackpot"})
		return
	}
	h.writeJSON(w, http.StatusOK, JackpotResponse{Amount: jackpot.CurrentAmount})
}

// HealthHandler reports active connection count and process uptime.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "OK",
		Clients: h.ws.ClientCount(),
		Uptime:  time.Since(h.started).Seconds(),
	})
}

// RootHandler is a plain liveness probe.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("The Click API Server is running"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}
