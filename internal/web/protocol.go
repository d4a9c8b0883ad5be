package web

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/object"
)

// MessageType identifies a /ws/play message.
type MessageType string

const (
	// Browser → server
	TypeSample  MessageType = "sample"  // One tracking sample
	TypeStart   MessageType = "start"   // Leave the menu or dismiss the tutorial
	TypeRestart MessageType = "restart" // Abandon and start over
	TypeStop    MessageType = "stop"    // Back to the menu
	TypeSave    MessageType = "save"    // Submit the final score

	// Server → browser
	TypeHello  MessageType = "hello"  // Session id, sent once
	TypeFrame  MessageType = "frame"  // Render snapshot
	TypeEvent  MessageType = "event"  // Engine event
	TypeStatus MessageType = "status" // Score submission status
	TypeError  MessageType = "error"
)

// Message wraps every websocket payload.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message carrying data.
func NewMessage(t MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}
	return &Message{Type: t, Timestamp: time.Now().UnixMilli(), Data: raw}, nil
}

// ParseMessage decodes a message.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// ParseData decodes the payload into v. A missing payload leaves v untouched.
func (m *Message) ParseData(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON encoding.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// SaveData is the payload of a save message.
type SaveData struct {
	Name string `json:"name"`
}

// HelloData is the payload of a hello message.
type HelloData struct {
	Session string  `json:"session"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// EventData is the payload of an event message.
type EventData struct {
	Name    string     `json:"name"`
	Payload game.Event `json:"payload"`
}

// StatusData is the payload of a status message.
type StatusData struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Error string `json:"error"`
}

// ObjectData is one falling object in a frame.
type ObjectData struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Radius float64     `json:"r"`
	Kind   object.Kind `json:"kind"`
}

// TextData is one floating text in a frame.
type TextData struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Value     string  `json:"value"`
	Highlight bool    `json:"highlight,omitempty"`
}

// FrameData is the payload of a frame message.
type FrameData struct {
	Phase       game.Phase   `json:"phase"`
	Score       int          `json:"score"`
	Lives       int          `json:"lives"`
	Combo       int          `json:"combo"`
	Fever       bool         `json:"fever"`
	Penalty     bool         `json:"penalty"`
	Warning     bool         `json:"warning"`
	Flash       bool         `json:"flash"`
	Guidance    string       `json:"guidance,omitempty"`
	Hold        float64      `json:"hold"`
	Countdown   int          `json:"countdown"`
	Speed       float64      `json:"speed"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Detected    bool         `json:"detected"`
	FaceLost    bool         `json:"face_lost"`
	Skin        string       `json:"skin"`
	CatchRadius float64      `json:"catch_radius"`
	PlayLeft    float64      `json:"play_left"`
	PlayWidth   float64      `json:"play_width"`
	Objects     []ObjectData `json:"objects"`
	Texts       []TextData   `json:"texts,omitempty"`
}

// NewFrameData copies what a browser needs out of an engine frame.
func NewFrameData(f game.Frame) FrameData {
	d := FrameData{
		Phase:       f.HUD.Phase,
		Score:       f.HUD.Score,
		Lives:       f.HUD.Lives,
		Combo:       f.HUD.Combo,
		Fever:       f.HUD.Fever,
		Penalty:     f.HUD.Penalty,
		Warning:     f.HUD.Warning,
		Flash:       f.HUD.Flash,
		Guidance:    f.HUD.Guidance,
		Hold:        f.HUD.HoldProgress,
		Countdown:   f.HUD.Countdown,
		Speed:       f.HUD.SpeedMultiplier,
		X:           f.ControlX,
		Y:           f.ControlY,
		Detected:    f.Detected,
		FaceLost:    f.HUD.FaceLost,
		Skin:        f.Skin.ID,
		CatchRadius: f.CatchRadius,
		PlayLeft:    f.Area.X,
		PlayWidth:   f.Area.Width,
		Objects:     make([]ObjectData, 0, len(f.Objects)),
	}
	for _, o := range f.Objects {
		d.Objects = append(d.Objects, ObjectData{X: o.X, Y: o.Y, Radius: o.Radius, Kind: o.Kind})
	}
	for _, t := range f.Texts {
		d.Texts = append(d.Texts, TextData{X: t.X, Y: t.Y, Value: t.Value, Highlight: t.Highlight})
	}
	return d
}
