package models

type GameType string

const (
	GameTypeDice  GameType = "dice"
	GameTypeCrash GameType = "crash"
	GameTypeMines GameType = "mines"
)

func (g GameType) Valid() bool {
	switch g {
	case GameTypeDice, GameTypeCrash, GameTypeMines:
		return true
	}
	return false
}

type SessionState string

const (
	StateCreated        SessionState = "created"
	StateAwaitingAction SessionState = "awaiting_action"
	StateCompleted      SessionState = "completed"
	StateExpired        SessionState = "expired"
)

// Live reports whether the session can still be completed.
func (s SessionState) Live() bool {
	return s == StateCreated || s == StateAwaitingAction
}
