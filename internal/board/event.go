package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// EventType names a serialized input event.
type EventType string

const (
	EventDown  EventType = "down"
	EventMove  EventType = "move"
	EventUp    EventType = "up"
	EventColor EventType = "color"
	EventSize  EventType = "size"
	EventUndo  EventType = "undo"
	EventClear EventType = "clear"
)

var ErrUnknownEvent = errors.New("unknown event type")

// Event is one pointer or brush action, as carried by event scripts and the
// remote pointer connection.
type Event struct {
	Type  EventType `json:"type"`
	X     float32   `json:"x,omitempty"`
	Y     float32   `json:"y,omitempty"`
	Color string    `json:"color,omitempty"`
	Size  float32   `json:"size,omitempty"`
}

// Validate checks the event type without touching a board.
func (ev Event) Validate() error {
	switch ev.Type {
	case EventDown, EventMove, EventUp, EventColor, EventSize, EventUndo, EventClear:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
}

// Apply performs ev on the board.
func (b *Board) Apply(ev Event) error {
	switch ev.Type {
	case EventDown:
		b.Down(ev.X, ev.Y)
	case EventMove:
		b.Move(ev.X, ev.Y)
	case EventUp:
		b.Up(ev.X, ev.Y)
	case EventColor:
		return b.SetColor(ev.Color)
	case EventSize:
		return b.SetThickness(ev.Size)
	case EventUndo:
		b.Undo()
	case EventClear:
		b.Clear()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// ApplyAll applies events in order and stops at the first failure.
func (b *Board) ApplyAll(events []Event) error {
	for i, ev := range events {
		if err := b.Apply(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
	}
	return nil
}

// ReadScript decodes a JSON array of events.
func ReadScript(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode event script: %w", err)
	}
	return events, nil
}
