package negotiation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	FrameStream   = "stream"
	FrameComplete = "complete"
	FrameError    = "error"
)

// ErrStreamIncomplete is returned when the body ends before a complete frame.
var ErrStreamIncomplete = errors.New("negotiation: stream ended without completion")

// StreamError carries an error frame sent by the negotiation service.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	if e.Message == "" {
		return "negotiation: stream error"
	}
	return "negotiation: stream error: " + e.Message
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("negotiation: %s returned %d: %s", e.Endpoint, e.Code, e.Body)
}

type StartRequest struct {
	Budget       decimal.Decimal `json:"budget"`
	CampaignType string          `json:"campaign_type"`
	Duration     string          `json:"duration,omitempty"`
}

// MarshalJSON sends the budget as a JSON number.
func (r StartRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Budget       json.Number `json:"budget"`
		CampaignType string      `json:"campaign_type"`
		Duration     string      `json:"duration,omitempty"`
	}{
		Budget:       json.Number(r.Budget.String()),
		CampaignType: r.CampaignType,
		Duration:     r.Duration,
	})
}

type StartResponse struct {
	SessionID  string          `json:"session_id"`
	Content    string          `json:"content"`
	Options    json.RawMessage `json:"options,omitempty"`
	State      *State          `json:"state,omitempty"`
	IsComplete bool            `json:"is_complete"`
}

type respondRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// State is the negotiation service's session state. It is kept verbatim in Raw
// so it can be re-displayed; only the completion fields are interpreted.
type State struct {
	Raw         json.RawMessage
	IsComplete  bool
	AgreedPrice decimal.NullDecimal
}

func (s *State) UnmarshalJSON(b []byte) error {
	var known struct {
		IsComplete  bool                `json:"is_complete"`
		AgreedPrice decimal.NullDecimal `json:"agreed_price"`
	}
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	s.Raw = append(json.RawMessage(nil), b...)
	s.IsComplete = known.IsComplete
	s.AgreedPrice = known.AgreedPrice
	return nil
}

func (s State) MarshalJSON() ([]byte, error) {
	if len(s.Raw) == 0 {
		return []byte("null"), nil
	}
	return s.Raw, nil
}

// Frame is one `data:` line of a respond-stream body.
type Frame struct {
	Type        string              `json:"type"`
	Content     string              `json:"content,omitempty"`
	State       *State              `json:"state,omitempty"`
	IsComplete  bool                `json:"is_complete,omitempty"`
	AgreedPrice decimal.NullDecimal `json:"agreed_price"`
	Message     string              `json:"message,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Completion is the outcome of one streamed turn.
type Completion struct {
	Message     string              `json:"message"`
	State       *State              `json:"state,omitempty"`
	IsComplete  bool                `json:"is_complete"`
	AgreedPrice decimal.NullDecimal `json:"agreed_price"`
}

// Deal reports whether the turn closed the negotiation with a price.
func (c *Completion) Deal() bool {
	return c != nil && c.IsComplete && c.AgreedPrice.Valid
}
