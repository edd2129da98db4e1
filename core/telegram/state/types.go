package state

import "context"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores the conversation state and its accumulated data for a user.
type Session[D any] struct {
	State State `json:"state"`
	Data  D     `json:"data"`
}

// Idle reports whether the session carries no active conversation.
func (s Session[D]) Idle() bool {
	return s.State == "" || s.State == StateIdle
}

// Manager persists sessions keyed by Telegram user ID.
// Get never fails for an unknown user: it returns an idle session with zero data.
type Manager[D any] interface {
	Get(ctx context.Context, userID int64) (Session[D], error)
	Set(ctx context.Context, userID int64, session Session[D]) error
	Clear(ctx context.Context, userID int64) error
}
