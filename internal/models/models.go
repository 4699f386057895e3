package models

import "time"

// Message is one persisted chat turn: the user's question and the reply
// the assistant sent back.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Breed     string    `json:"breed,omitempty"`
	Topics    []string  `json:"topics"`
	Language  string    `json:"language,omitempty"`
	Refused   bool      `json:"refused"`
	CreatedAt time.Time `json:"created_at"`
}
