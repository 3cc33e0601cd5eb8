package comm

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event types exchanged over the websocket channel.
const (
	TypeClick             = "click"
	TypeClickResult       = "click_result"
	TypeError             = "error"
	TypeJackpotUpdate     = "jackpot_update"
	TypeJackpotWon        = "jackpot_won"
	TypeHeartbeat         = "heartbeat"
	TypeHeartbeatResponse = "heartbeat_response"
)

type WSMessage struct {
	Type string          `json:"type"` // e.g. "click", "jackpot_update"
	Data json.RawMessage `json:"data,omitempty"`
}

// ClickPayload carries a raw coordinate submission from a web client.
// Pointers so a missing or non-numeric field is distinguishable from zero.
type ClickPayload struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type ClickResult struct {
	Distance float64 `json:"distance"`
	Success  bool    `json:"success"`
}

type JackpotUpdate struct {
	Amount decimal.Decimal `json:"amount"`
}

// JackpotWon announces a win to every client; Amount is the pot that was
// just taken, i.e. the pre-reset value.
type JackpotWon struct {
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// NewWSMessage wraps a payload into the wire envelope.
func NewWSMessage(msgType string, payload any) (*WSMessage, error) {
	m := &WSMessage{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		m.Data = data
	}
	return m, nil
}
