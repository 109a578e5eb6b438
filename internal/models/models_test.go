package models_test

import (
	"testing"

	"fairbet-backend/internal/models"
)

func TestGameTypes(t *testing.T) {
	for _, g := range []models.GameType{models.GameTypeDice, models.GameTypeCrash, models.GameTypeMines} {
		if !g.Valid() {
			t.Errorf("%s should be a valid game type", g)
		}
	}

	if models.GameType("roulette").Valid() {
		t.Error("unknown game type should not validate")
	}
}

func TestSessionStates(t *testing.T) {
	if !models.StateCreated.Live() || !models.StateAwaitingAction.Live() {
		t.Error("created and awaiting_action should be live states")
	}

	if models.StateCompleted.Live() || models.StateExpired.Live() {
		t.Error("completed and expired are terminal states")
	}
}

func TestValidAddress(t *testing.T) {
	if !models.ValidAddress("0x1234567890abcdef1234567890ABCDEF12345678") {
		t.Error("well-formed address should validate")
	}

	for _, addr := range []string{"", "0x123", "1234567890abcdef1234567890abcdef12345678", "0xZZ34567890abcdef1234567890abcdef12345678"} {
		if models.ValidAddress(addr) {
			t.Errorf("address %q should not validate", addr)
		}
	}
}

func TestNewWallet(t *testing.T) {
	wallet, err := models.NewWallet("0x1234567890abcdef1234567890abcdef12345678", 100)
	if err != nil {
		t.Fatalf("Failed to create wallet: %v", err)
	}

	if wallet.Balance != 100 {
		t.Errorf("Expected starting balance 100, got %f", wallet.Balance)
	}

	if wallet.ClientSeed == "" {
		t.Error("Wallet should have a client seed")
	}

	other, err := models.NewWallet("0x1234567890abcdef1234567890abcdef12345678", 100)
	if err != nil {
		t.Fatalf("Failed to create wallet: %v", err)
	}

	if other.ClientSeed == wallet.ClientSeed {
		t.Error("Client seeds should not repeat across wallets")
	}
}
