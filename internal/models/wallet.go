package models

import "time"

type Wallet struct {
	Address      string  `json:"address" redis:"address"`
	Balance      float64 `json:"balance" redis:"balance"`
	TotalWagered float64 `json:"total_wagered" redis:"total_wagered"`
	TotalWon     float64 `json:"total_won" redis:"total_won"`

	// Provably fair defaults used when a start request omits a seed
	ClientSeed string `json:"client_seed" redis:"client_seed"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

type TransactionType string

const (
	TransactionTypeBet     TransactionType = "bet"
	TransactionTypeWin     TransactionType = "win"
	TransactionTypeDeposit TransactionType = "deposit"
	TransactionTypeExpired TransactionType = "expired"
)

type Transaction struct {
	ID          string          `json:"id" redis:"id"`
	UserAddress string          `json:"user_address" redis:"user_address"`
	Type        TransactionType `json:"type" redis:"type"`
	Amount      float64         `json:"amount" redis:"amount"`
	SessionID   string          `json:"session_id,omitempty" redis:"session_id"`
	Description string          `json:"description" redis:"description"`
	CreatedAt   time.Time       `json:"created_at" redis:"created_at"`
}

type BalanceResponse struct {
	Balance      float64 `json:"balance"`
	TotalWagered float64 `json:"total_wagered"`
	TotalWon     float64 `json:"total_won"`
}
