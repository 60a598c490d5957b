// internal/types/models.go
package types

import (
	"fmt"
	"time"
)

// OilChange is the current oil-change baseline. Exactly one instance exists
// in a ServiceRecord; it is overwritten in place when the driver confirms a
// new change.
type OilChange struct {
	Mileage int       `json:"mileage"`
	Date    time.Time `json:"date"`
}

// ServiceEvent is one free-form entry in the maintenance history. Fields are
// immutable after creation; the ID doubles as the document ID in the event
// index so the two representations can be paired.
type ServiceEvent struct {
	ID      EventID   `json:"id"`
	Date    time.Time `json:"date"`
	Work    string    `json:"work"`
	Mileage int       `json:"mileage"`
}

// Document renders the event as the text stored in the event index. Every
// indexing path (live append, CLI append, full rebuild) must use this same
// rendering so a rebuilt index reproduces the live one.
func (e *ServiceEvent) Document() string {
	return fmt.Sprintf("%s: %s (%d km)", e.Date.Format("2006-01-02"), e.Work, e.Mileage)
}

// ServiceRecord is the authoritative structured store of maintenance facts.
// History is append-only except for a single undo-last operation.
type ServiceRecord struct {
	OilChange OilChange      `json:"oil_change"`
	History   []ServiceEvent `json:"history"`
}

// InboundMessage is a user utterance arriving from a front-end channel.
type InboundMessage struct {
	Source    string      `json:"source"`
	UserID    UserID      `json:"user_id"`
	Recipient RecipientID `json:"recipient"`
	Text      string      `json:"text"`
}
