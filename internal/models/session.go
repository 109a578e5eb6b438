package models

import "time"

// GameSession is one bet's lifecycle from creation to settlement.
// ServerSeed is persisted but must never reach a client before the
// session is completed; handlers build their own response payloads.
type GameSession struct {
	ID          string   `json:"id" redis:"id"`
	UserAddress string   `json:"user_address" redis:"user_address"`
	GameType    GameType `json:"game_type" redis:"game_type"`
	BetAmount   float64  `json:"bet_amount" redis:"bet_amount"`

	ClientSeed     string `json:"client_seed" redis:"client_seed"`
	ServerSeed     string `json:"server_seed" redis:"server_seed"`
	ServerSeedHash string `json:"server_seed_hash" redis:"server_seed_hash"`
	Nonce          int64  `json:"nonce" redis:"nonce"`

	State     SessionState   `json:"state" redis:"state"`
	Result    *SessionResult `json:"result,omitempty" redis:"result"`
	WinAmount float64        `json:"win_amount" redis:"win_amount"`

	CreatedAt   time.Time  `json:"created_at" redis:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" redis:"completed_at"`
}

// SessionResult is the game-specific outcome, set only on completion.
// Multiplier is the payout multiplier the session settled at; it is
// zero on a loss.
type SessionResult struct {
	Win        bool    `json:"win"`
	Multiplier float64 `json:"multiplier"`

	// dice
	Roll   int  `json:"roll,omitempty"`
	Target int  `json:"target,omitempty"`
	Over   bool `json:"over,omitempty"`

	// crash
	CrashPoint float64 `json:"crash_point,omitempty"`
	Cashout    float64 `json:"cashout,omitempty"`

	// mines
	MineCells   []int `json:"mine_cells,omitempty"`
	Picks       []int `json:"picks,omitempty"`
	SafeReveals int   `json:"safe_reveals,omitempty"`
	HitMine     bool  `json:"hit_mine,omitempty"`
}

// CompleteAction carries the caller's completion move. Which fields
// matter depends on the session's game type.
type CompleteAction struct {
	// dice: win under (or over) Target on a 1-100 roll
	Target int  `json:"target,omitempty"`
	Over   bool `json:"over,omitempty"`

	// crash: requested cash-out multiplier
	Cashout float64 `json:"cashout,omitempty"`

	// mines: layout size and the ordered cells to open; surviving
	// every pick cashes out at the reached multiplier
	MineCount int   `json:"mine_count,omitempty"`
	Picks     []int `json:"picks,omitempty"`
}
