package entity

import "time"

// Entry is the pending verification for one identifier.
type Entry struct {
	Identifier  string    `json:"identifier"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

// IsExpired reports whether the entry is dead at now. An entry is still live
// at exactly ExpiresAt.
func (e Entry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Action tells a store what to do with the entry after a MutateFunc ran.
type Action int

const (
	// ActionKeep leaves the stored entry untouched.
	ActionKeep Action = iota
	// ActionSave persists the entry as modified by the MutateFunc.
	ActionSave
	// ActionDelete removes the entry.
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionSave:
		return "save"
	case ActionDelete:
		return "delete"
	default:
		return "keep"
	}
}

// MutateFunc inspects and may modify current, which is nil when no entry
// exists. Its error is returned to the caller of Store.Mutate after the action
// has been applied. It may run more than once, so it must only touch current.
type MutateFunc func(current *Entry) (Action, error)
