package model

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Session is one interview room: the engine snapshot it resumes from plus
// the transcript exchanged so far.
type Session struct {
	ID        string        `json:"id" bson:"_id,omitempty"`
	RoomCode  string        `json:"roomCode" bson:"roomCode"`
	Status    SessionStatus `json:"status" bson:"status"`
	Snapshot  []byte        `json:"snapshot,omitempty" bson:"snapshot,omitempty"`
	Messages  []Message     `json:"messages" bson:"messages"`
	StartedAt time.Time     `json:"startedAt" bson:"startedAt"`
	EndedAt   *time.Time    `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// Message is one transcript entry.
type Message struct {
	Sender    string    `json:"sender" bson:"sender"` // "respondent" or "bot"
	Text      string    `json:"text" bson:"text"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Record is a persisted completed interview.
type Record struct {
	ID          string           `json:"id" bson:"_id,omitempty"`
	RoomCode    string           `json:"roomCode" bson:"roomCode"`
	Title       string           `json:"title" bson:"title"`
	Order       []string         `json:"order" bson:"order"`
	Answers     map[string]Value `json:"answers" bson:"answers"`
	CompletedAt time.Time        `json:"completedAt" bson:"completedAt"`
}
