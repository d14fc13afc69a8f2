package models

import "time"

type MessageKind string

const (
	MessagePenalty MessageKind = "penalty"
	MessageLevelUp MessageKind = "levelup"
)

// MailboxMessage is an append-only accountability event. Only IsRead ever changes.
type MailboxMessage struct {
	ID                int64       `json:"id"`
	Timestamp         time.Time   `json:"timestamp"`
	IsRead            bool        `json:"is_read"`
	Kind              MessageKind `json:"kind"`
	InstanceID        *string     `json:"instance_id,omitempty"`
	ActivityName      string      `json:"activity_name"`
	ActivityStartTime string      `json:"activity_start_time"`
	ActivityEndTime   string      `json:"activity_end_time"`
	LevelDrop         int         `json:"level_drop"`
	PenaltyName       string      `json:"penalty_name"`
	Message           string      `json:"message"`
}
