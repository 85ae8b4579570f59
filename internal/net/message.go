package net

import (
	"fmt"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// MessageType tags a relay message.
type MessageType string

const (
	// MessageWelcome is sent by the host to a new peer with its client id.
	MessageWelcome MessageType = "welcome"
	// MessageDraw carries one finished line.
	MessageDraw MessageType = "draw"
	// MessageClear removes every line drawn by OwnerID.
	MessageClear MessageType = "clear"
)

// Message is the JSON envelope exchanged between host and peers.
type Message struct {
	Type    MessageType `json:"type"`
	Line    *WireLine   `json:"line,omitempty"`
	OwnerID string      `json:"owner_id,omitempty"`
}

// WireLine is a finished line as sent over the relay.
type WireLine struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Points      []geom.Point `json:"points"`
	Raw         []geom.Point `json:"raw,omitempty"`
	Smoothed    bool         `json:"smoothed,omitempty"`
	Granularity int          `json:"granularity,omitempty"`
	Width       float32      `json:"width"`
	Color       string       `json:"color"`
}

// NewDrawMessage wraps l for broadcast.
func NewDrawMessage(l *state.Line) Message {
	return Message{Type: MessageDraw, Line: EncodeLine(l)}
}

// NewClearMessage asks peers to drop owner's lines.
func NewClearMessage(owner string) Message {
	return Message{Type: MessageClear, OwnerID: owner}
}

func decodeDraw(msg Message) (*state.Line, error) {
	if msg.Line == nil {
		return nil, fmt.Errorf("draw message without a line")
	}
	return msg.Line.Line()
}

// EncodeLine copies l into its wire form.
func EncodeLine(l *state.Line) *WireLine {
	return &WireLine{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Points:      geom.Clone(l.Points),
		Raw:         geom.Clone(l.Raw),
		Smoothed:    l.EnableSmoothedPath,
		Granularity: l.Granularity,
		Width:       l.LineWidth,
		Color:       state.ColorHex(l.LineColor),
	}
}

// Line rebuilds the board line. Lines without an id or points are rejected,
// as are smoothed lines without their raw samples, since those could not be
// re-smoothed or restored when the smoothing settings change.
func (w *WireLine) Line() (*state.Line, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("line has no id")
	}
	if len(w.Points) == 0 {
		return nil, fmt.Errorf("line %s has no points", w.ID)
	}
	if w.Smoothed && len(w.Raw) == 0 {
		return nil, fmt.Errorf("smoothed line %s has no raw points", w.ID)
	}
	c, err := state.ParseColor(w.Color)
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", w.ID, err)
	}
	return &state.Line{
		ID:                 w.ID,
		OwnerID:            w.OwnerID,
		Points:             geom.Clone(w.Points),
		Raw:                geom.Clone(w.Raw),
		EnableSmoothedPath: w.Smoothed,
		Granularity:        w.Granularity,
		LineWidth:          w.Width,
		LineColor:          c,
	}, nil
}
