package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/hudsonhicksoffish/the-click-continued/internal/comm"
	"github.com/hudsonhicksoffish/the-click-continued/internal/models"
	"github.com/hudsonhicksoffish/the-click-continued/internal/service"
)

const heartbeatInterval = 30 * time.Second

// session is one active realtime connection. Writes are serialized through mu
// because the heartbeat ticker, click replies and broadcasts run on different
// goroutines.
type session struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
	done chan struct{}
}

func (c *session) send(msg *comm.WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Ws manages the set of connected clients and dispatches inbound click
// submissions to the game services.
type Ws struct {
	sessions sync.Map // socketId -> *session
	Jackpot  *service.JackpotService
	Target   *service.TargetService
}

func NewWs(jackpot *service.JackpotService, target *service.TargetService) *Ws {
	return &Ws{Jackpot: jackpot, Target: target}
}

// StoreConnection registers a new socket, pushes the current jackpot to it and
// starts its heartbeat ticker.
func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	sess := &session{
		id:   socketId,
		conn: conn,
		done: make(chan struct{}),
	}
	s.sessions.Store(socketId, sess)

	go s.welcome(sess)
	go s.heartbeatLoop(sess)
}

// HandleDisconnect removes the socket from the active set and stops its
// heartbeat ticker.
func (s *Ws) HandleDisconnect(socketId string) {
	value, ok := s.sessions.LoadAndDelete(socketId)
	if !ok {
		return
	}
	close(value.(*session).done)
	log.Infof("client disconnected: %s", socketId)
}

// ClientCount reports the number of active connections.
func (s *Ws) ClientCount() int {
	count := 0
	s.sessions.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// SocketMessage handles one inbound message from a web client.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	value, ok := s.sessions.Load(socketId)
	if !ok {
		log.Warnf("message from unknown socket %s", socketId)
		return
	}
	sess := value.(*session)

	switch message.Type {
	case comm.TypeClick:
		s.handleClick(sess, message)
	case comm.TypeHeartbeatResponse:
		log.Debugf("heartbeat received from %s", socketId)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// welcome fetches today's target (generating it on date rollover) and pushes
// the current jackpot value to the connecting client only.
func (s *Ws) welcome(sess *session) {
	target := s.Target.GetOrCreateDailyTarget()
	log.Debugf("current target for %s: (%d, %d)", target.TargetDate, target.TargetX, target.TargetY)

	jackpot, err := s.Jackpot.GetJackpot()
	if err != nil {
		log.Errorf("Error fetching jackpot for %s: %s", sess.id, err)
		return
	}
	s.sendTo(sess, comm.TypeJackpotUpdate, comm.JackpotUpdate{Amount: jackpot.CurrentAmount})
}

func (s *Ws) heartbeatLoop(sess *session) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if err := s.sendTo(sess, comm.TypeHeartbeat, nil); err != nil {
				log.Debugf("heartbeat to %s failed: %s", sess.id, err)
			}
		}
	}
}

// handleClick scores one coordinate submission. A failed jackpot write must
// never produce a result or broadcast; the sender gets an error event instead.
// The new amount is computed from a read taken outside the state lock; the
// family lock only guarantees whole-record writes, so two interleaved misses
// can collapse into one increment.
func (s *Ws) handleClick(sess *session, message *comm.WSMessage) {
	payload := comm.ClickPayload{}
	if err := json.Unmarshal(message.Data, &payload); err != nil || payload.X == nil || payload.Y == nil {
		s.sendError(sess, "Invalid coordinates")
		return
	}

	x, y := *payload.X, *payload.Y
	if x < 0 || x > float64(models.GridWidth-1) || y < 0 || y > float64(models.GridHeight-1) {
		s.sendError(sess, "Invalid coordinates")
		return
	}

	current, err := s.Jackpot.GetJackpot()
	if err != nil {
		log.Errorf("Error processing click from %s: %s", sess.id, err)
		s.sendError(sess, "Failed to process click")
		return
	}
	target := s.Target.GetOrCreateDailyTarget()

	distance := service.RoundedDistance(target, x, y)

	if distance == 0 {
		s.handleWin(sess, current)
		return
	}

	newAmount := current.CurrentAmount.Add(models.MissIncrement).Round(3)
	if !s.Jackpot.UpdateJackpot(newAmount, sess.id) {
		s.sendError(sess, "Failed to process click")
		return
	}
	s.Jackpot.LogHistory(current.CurrentAmount, newAmount, models.ActionIncrement, sess.id)

	s.sendTo(sess, comm.TypeClickResult, comm.ClickResult{Distance: distance, Success: false})
	s.Broadcast(comm.TypeJackpotUpdate, comm.JackpotUpdate{Amount: newAmount})
}

func (s *Ws) handleWin(sess *session, current *models.JackpotState) {
	if !s.Jackpot.ResetJackpot(models.BaseJackpot, sess.id) {
		s.sendError(sess, "Failed to process click")
		return
	}
	s.Jackpot.LogHistory(current.CurrentAmount, models.BaseJackpot, models.ActionWin, sess.id)

	// Rotate the target immediately so the next click of the day cannot
	// reuse the just-won pixel.
	if _, err := s.Target.ForceNewDailyTarget(); err != nil {
		log.Errorf("Error rotating daily target after win: %s", err)
	}

	s.sendTo(sess, comm.TypeClickResult, comm.ClickResult{Distance: 0, Success: true})
	s.Broadcast(comm.TypeJackpotUpdate, comm.JackpotUpdate{Amount: models.BaseJackpot})
	s.Broadcast(comm.TypeJackpotWon, comm.JackpotWon{
		Amount:    current.CurrentAmount,
		Timestamp: time.Now().UTC(),
	})

	log.Infof("jackpot of %s won by %s", current.CurrentAmount, sess.id)
}

// Broadcast sends an event to every connected client.
func (s *Ws) Broadcast(msgType string, payload any) {
	msg, err := comm.NewWSMessage(msgType, payload)
	if err != nil {
		log.Errorf("Failed to marshal %s broadcast: %s", msgType, err)
		return
	}

	s.sessions.Range(func(key, value any) bool {
		sess := value.(*session)
		if err := sess.send(msg); err != nil {
			log.Debugf("broadcast to %s failed: %s", sess.id, err)
		}
		return true
	})
}

func (s *Ws) sendTo(sess *session, msgType string, payload any) error {
	msg, err := comm.NewWSMessage(msgType, payload)
	if err != nil {
		log.Errorf("Failed to marshal %s message: %s", msgType, err)
		return err
	}
	if err := sess.send(msg); err != nil {
		log.Debugf("send %s to %s failed: %s", msgType, sess.id, err)
		return err
	}
	return nil
}

func (s *Ws) sendError(sess *session, errorMsg string) {
	s.sendTo(sess, comm.TypeError, comm.ErrorMessage{Message: errorMsg})
}

// SendError emits an error event to one client, serialized with its other
// writes.
func (s *Ws) SendError(socketId string, errorMsg string) {
	value, ok := s.sessions.Load(socketId)
	if !ok {
		return
	}
	s.sendError(value.(*session), errorMsg)
}
