package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fairbet-backend/internal/config"
	"fairbet-backend/internal/models"
	"fairbet-backend/internal/services"
)

func setupTestRedis(t *testing.T) *services.RedisService {
	cfg := &config.Config{
		RedisAddr:        "localhost:6379",
		RedisPass:        "",
		RedisDB:          0,
		StartingBalance:  100,
		SessionRetention: time.Hour,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return redisService
}

func TestRedisWalletLedger(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	address := "0x00000000000000000000000000000000000fe511"

	redisService.DeleteWallet(ctx, address)
	defer redisService.DeleteWallet(ctx, address)

	wallet, err := redisService.GetWallet(ctx, address)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.Balance != 100 {
		t.Errorf("Expected default balance 100, got %f", wallet.Balance)
	}
	if wallet.ClientSeed == "" {
		t.Error("Fresh wallet should carry a client seed")
	}

	if err := redisService.Debit(ctx, address, 30); err != nil {
		t.Fatalf("Failed to debit: %v", err)
	}

	balance, err := redisService.GetBalance(ctx, address)
	if err != nil {
		t.Fatalf("Failed to get balance: %v", err)
	}
	if balance != 70 {
		t.Errorf("Expected balance 70 after debit, got %f", balance)
	}

	if err := redisService.Debit(ctx, address, 1000); !errors.Is(err, services.ErrInsufficientBalance) {
		t.Errorf("Oversized debit should fail with ErrInsufficientBalance, got %v", err)
	}

	if balance, _ = redisService.GetBalance(ctx, address); balance != 70 {
		t.Errorf("Failed debit must not move the balance, got %f", balance)
	}

	if err := redisService.Credit(ctx, address, 15); err != nil {
		t.Fatalf("Failed to credit: %v", err)
	}
	if balance, _ = redisService.GetBalance(ctx, address); balance != 85 {
		t.Errorf("Expected balance 85 after credit, got %f", balance)
	}
}

func TestRedisSessionStore(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	address := "0x00000000000000000000000000000000000fe512"

	session := &models.GameSession{
		ID:             uuid.New().String(),
		UserAddress:    address,
		GameType:       models.GameTypeDice,
		BetAmount:      1.0,
		ClientSeed:     "client123",
		ServerSeed:     "server123",
		ServerSeedHash: "hash123",
		Nonce:          1,
		State:          models.StateAwaitingAction,
		CreatedAt:      time.Now(),
	}
	defer redisService.DeleteSession(ctx, session.ID)

	if err := redisService.InsertSession(ctx, session); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}

	if err := redisService.InsertSession(ctx, session); err == nil {
		t.Error("Duplicate insert should fail")
	}

	retrieved, err := redisService.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if retrieved.ID != session.ID || retrieved.State != models.StateAwaitingAction {
		t.Errorf("Session round trip mismatch: %+v", retrieved)
	}

	now := time.Now()
	session.State = models.StateCompleted
	session.WinAmount = 1.98
	session.CompletedAt = &now
	session.Result = &models.SessionResult{Win: true, Multiplier: 1.98, Roll: 42, Target: 50}

	if err := redisService.ClaimSession(ctx, session); err != nil {
		t.Fatalf("Failed to claim session: %v", err)
	}

	// a second claim loses the CAS
	if err := redisService.ClaimSession(ctx, session); !errors.Is(err, services.ErrSessionStateConflict) {
		t.Errorf("Second claim should conflict, got %v", err)
	}

	retrieved, err = redisService.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to get settled session: %v", err)
	}
	if retrieved.State != models.StateCompleted || retrieved.Result == nil || retrieved.Result.Roll != 42 {
		t.Errorf("Settled session round trip mismatch: %+v", retrieved)
	}

	if _, err := redisService.GetSession(ctx, "no-such-session"); !errors.Is(err, services.ErrSessionNotFound) {
		t.Errorf("Missing session should return ErrSessionNotFound, got %v", err)
	}
}

func TestRedisNonce(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	address := "0x00000000000000000000000000000000000fe513"

	redisService.ResetNonce(ctx, address)
	defer redisService.ResetNonce(ctx, address)

	first, err := redisService.NextNonce(ctx, address)
	if err != nil {
		t.Fatalf("Failed to allocate nonce: %v", err)
	}

	second, err := redisService.NextNonce(ctx, address)
	if err != nil {
		t.Fatalf("Failed to allocate nonce: %v", err)
	}

	if second != first+1 {
		t.Errorf("Nonces must increase strictly: %d then %d", first, second)
	}
}

func TestRedisRateLimit(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	ctx := context.Background()
	address := "0x00000000000000000000000000000000000fe514"

	allowed, err := redisService.CheckRateLimit(ctx, address, "test", 2, time.Minute)
	if err != nil {
		t.Fatalf("Failed to check rate limit: %v", err)
	}
	if !allowed {
		t.Error("First request should be allowed")
	}

	redisService.CheckRateLimit(ctx, address, "test", 2, time.Minute)

	allowed, _ = redisService.CheckRateLimit(ctx, address, "test", 2, time.Minute)
	if allowed {
		t.Error("Third request should be limited")
	}
}
