package core

import "time"

// Notice levels
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a transient, user-visible notification emitted after a mutation.
type Notice struct {
	UserID string    `json:"user_id"`
	Level  string    `json:"level"`
	Title  string    `json:"title"`
	Body   string    `json:"body,omitempty"`
	At     time.Time `json:"at"` // UTC
}

// Notifier is any service that can surface notices to users.
type Notifier interface {
	Notify(notice Notice)
}
