package models

type StartSessionRequest struct {
	GameType   GameType `json:"game_type" binding:"required"`
	BetAmount  float64  `json:"bet_amount" binding:"required"`
	ClientSeed string   `json:"client_seed"`
}

type CompleteSessionRequest struct {
	Action CompleteAction `json:"action" binding:"required"`
}

type StartSessionResponse struct {
	SessionID      string `json:"session_id"`
	ServerSeedHash string `json:"server_seed_hash"`
	Nonce          int64  `json:"nonce"`
}

type VerifySessionResponse struct {
	SessionID      string         `json:"session_id"`
	GameType       GameType       `json:"game_type"`
	ClientSeed     string         `json:"client_seed"`
	ServerSeed     string         `json:"server_seed,omitempty"`
	ServerSeedHash string         `json:"server_seed_hash"`
	Nonce          int64          `json:"nonce"`
	State          SessionState   `json:"state"`
	Result         *SessionResult `json:"result,omitempty"`
}
