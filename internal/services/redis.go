package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fairbet-backend/internal/config"
	"fairbet-backend/internal/models"
)

// RedisService backs the session store, the ledger adapter, and the
// transaction log. Sessions and wallets are JSON values; every
// conditional update goes through a Lua script so there is exactly one
// writer per key transition.
type RedisService struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client, cfg: cfg}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// --- wallet / ledger ---

func (s *RedisService) GetWallet(ctx context.Context, address string) (*models.Wallet, error) {
	key := fmt.Sprintf(KeyWallet, address)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		wallet, err := models.NewWallet(address, s.cfg.StartingBalance)
		if err != nil {
			return nil, err
		}
		if err := s.SaveWallet(ctx, wallet); err != nil {
			return nil, fmt.Errorf("failed to create wallet: %v", err)
		}
		return wallet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %v", err)
	}

	var wallet models.Wallet
	if err := json.Unmarshal([]byte(data), &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %v", err)
	}

	return &wallet, nil
}

func (s *RedisService) SaveWallet(ctx context.Context, wallet *models.Wallet) error {
	key := fmt.Sprintf(KeyWallet, wallet.Address)

	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %v", err)
	}

	return s.client.Set(ctx, key, data, 0).Err()
}

var debitScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local wallet = cjson.decode(data)

	if wallet.balance < amount then
		return redis.error_reply("insufficient balance")
	end

	wallet.balance = wallet.balance - amount
	wallet.total_wagered = wallet.total_wagered + amount

	redis.call("SET", key, cjson.encode(wallet))

	return "OK"
`)

// Debit atomically checks and deducts the stake. The balance check and
// the write happen in one script; no side effect on failure.
func (s *RedisService) Debit(ctx context.Context, address string, amount float64) error {
	// auto-provision the demo wallet on first touch
	if _, err := s.GetWallet(ctx, address); err != nil {
		return err
	}

	key := fmt.Sprintf(KeyWallet, address)
	if err := debitScript.Run(ctx, s.client, []string{key}, amount).Err(); err != nil {
		if strings.Contains(err.Error(), "insufficient balance") {
			return fmt.Errorf("%w: debit of %f", ErrInsufficientBalance, amount)
		}
		return err
	}
	return nil
}

var creditScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local wallet = cjson.decode(data)

	wallet.balance = wallet.balance + amount
	wallet.total_won = wallet.total_won + amount

	redis.call("SET", key, cjson.encode(wallet))

	return "OK"
`)

func (s *RedisService) Credit(ctx context.Context, address string, amount float64) error {
	key := fmt.Sprintf(KeyWallet, address)
	return creditScript.Run(ctx, s.client, []string{key}, amount).Err()
}

func (s *RedisService) GetBalance(ctx context.Context, address string) (float64, error) {
	wallet, err := s.GetWallet(ctx, address)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// ClientSeed returns the seed published on the wallet, provisioning the
// wallet on first touch like every other wallet read.
func (s *RedisService) ClientSeed(ctx context.Context, address string) (string, error) {
	wallet, err := s.GetWallet(ctx, address)
	if err != nil {
		return "", err
	}
	return wallet.ClientSeed, nil
}

// --- session store ---

func (s *RedisService) InsertSession(ctx context.Context, session *models.GameSession) error {
	key := fmt.Sprintf(KeySession, session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %v", err)
	}

	ok, err := s.client.SetNX(ctx, key, data, s.cfg.SessionRetention).Result()
	if err != nil {
		return fmt.Errorf("failed to save session: %v", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	if err := s.client.ZAdd(ctx, KeyActiveSessions, redis.Z{
		Score:  float64(session.CreatedAt.Unix()),
		Member: session.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index session: %v", err)
	}

	return nil
}

func (s *RedisService) GetSession(ctx context.Context, sessionID string) (*models.GameSession, error) {
	key := fmt.Sprintf(KeySession, sessionID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %v", err)
	}

	var session models.GameSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %v", err)
	}

	return &session, nil
}

var claimScript = redis.NewScript(`
	local key = KEYS[1]
	local data = redis.call("GET", key)
	if not data then
		return 0
	end

	local session = cjson.decode(data)
	if session.state ~= "created" and session.state ~= "awaiting_action" then
		return -1
	end

	redis.call("SET", key, ARGV[1], "KEEPTTL")
	return 1
`)

// ClaimSession performs the compare-and-set transition out of a live
// state. Exactly one concurrent claim can succeed.
func (s *RedisService) ClaimSession(ctx context.Context, session *models.GameSession) error {
	key := fmt.Sprintf(KeySession, session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %v", err)
	}

	res, err := claimScript.Run(ctx, s.client, []string{key}, data).Int()
	if err != nil {
		return fmt.Errorf("failed to claim session: %v", err)
	}

	switch res {
	case 0:
		return fmt.Errorf("%w: %s", ErrSessionNotFound, session.ID)
	case -1:
		return fmt.Errorf("%w: %s", ErrSessionStateConflict, session.ID)
	}

	s.client.ZRem(ctx, KeyActiveSessions, session.ID)

	historyKey := fmt.Sprintf(KeyUserHistory, session.UserAddress)
	s.client.ZAdd(ctx, historyKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: session.ID,
	})
	// keep only the most recent entries
	s.client.ZRemRangeByRank(ctx, historyKey, 0, -101)
	s.client.Expire(ctx, historyKey, s.cfg.SessionRetention)

	return nil
}

func (s *RedisService) NextNonce(ctx context.Context, address string) (int64, error) {
	key := fmt.Sprintf(KeyUserNonce, address)

	nonce, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate nonce: %v", err)
	}

	return nonce, nil
}

func (s *RedisService) StaleSessionIDs(ctx context.Context, olderThan time.Time) ([]string, error) {
	ids, err := s.client.ZRangeByScore(ctx, KeyActiveSessions, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", olderThan.Unix()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan stale sessions: %v", err)
	}

	return ids, nil
}

func (s *RedisService) GetSessionHistory(ctx context.Context, address string, limit int64) ([]*models.GameSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	historyKey := fmt.Sprintf(KeyUserHistory, address)

	ids, err := s.client.ZRevRange(ctx, historyKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %v", err)
	}

	var sessions []*models.GameSession
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// --- transaction log ---

func (s *RedisService) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	txKey := fmt.Sprintf(KeyTransaction, tx.ID)

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %v", err)
	}

	if err := s.client.Set(ctx, txKey, data, s.cfg.SessionRetention).Err(); err != nil {
		return fmt.Errorf("failed to save transaction: %v", err)
	}

	userTxKey := fmt.Sprintf(KeyUserTransactions, tx.UserAddress)
	if err := s.client.ZAdd(ctx, userTxKey, redis.Z{
		Score:  float64(tx.CreatedAt.Unix()),
		Member: tx.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index transaction: %v", err)
	}

	// Keep only last 100 transactions
	s.client.ZRemRangeByRank(ctx, userTxKey, 0, -101)

	return nil
}

func (s *RedisService) GetUserTransactions(ctx context.Context, address string, limit int64) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	userTxKey := fmt.Sprintf(KeyUserTransactions, address)

	ids, err := s.client.ZRevRange(ctx, userTxKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction IDs: %v", err)
	}

	var transactions []*models.Transaction
	for _, id := range ids {
		data, err := s.client.Get(ctx, fmt.Sprintf(KeyTransaction, id)).Result()
		if err != nil {
			continue
		}

		var tx models.Transaction
		if err := json.Unmarshal([]byte(data), &tx); err != nil {
			continue
		}

		transactions = append(transactions, &tx)
	}

	return transactions, nil
}

// --- rate limiting ---

func (s *RedisService) CheckRateLimit(ctx context.Context, address, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, address, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// --- test helpers ---

func (s *RedisService) DeleteWallet(ctx context.Context, address string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyWallet, address)).Err()
}

func (s *RedisService) DeleteSession(ctx context.Context, sessionID string) error {
	s.client.ZRem(ctx, KeyActiveSessions, sessionID)
	return s.client.Del(ctx, fmt.Sprintf(KeySession, sessionID)).Err()
}

func (s *RedisService) ResetNonce(ctx context.Context, address string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyUserNonce, address)).Err()
}

var _ SessionStore = (*RedisService)(nil)
var _ Ledger = (*RedisService)(nil)
var _ TransactionLog = (*RedisService)(nil)
