package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"fairbet-backend/internal/fair"
	"fairbet-backend/internal/lib/logger/sl"
	"fairbet-backend/internal/models"
)

// SessionStore holds sessions keyed by ID. It is the engine's only
// shared mutable state; ClaimSession must provide at-most-one-writer
// semantics for the transition out of a live state.
type SessionStore interface {
	InsertSession(ctx context.Context, session *models.GameSession) error
	GetSession(ctx context.Context, sessionID string) (*models.GameSession, error)
	// ClaimSession conditionally replaces a live session with its
	// settled form. Returns ErrSessionNotFound or, when another writer
	// got there first, ErrSessionStateConflict.
	ClaimSession(ctx context.Context, session *models.GameSession) error
	NextNonce(ctx context.Context, address string) (int64, error)
	StaleSessionIDs(ctx context.Context, olderThan time.Time) ([]string, error)
}

// Ledger debits and credits user balances. Balance state is external to
// the engine; implementations must make each call atomic. The wallet
// also carries the user's published client seed, used when a start
// request omits one.
type Ledger interface {
	Debit(ctx context.Context, address string, amount float64) error
	Credit(ctx context.Context, address string, amount float64) error
	GetBalance(ctx context.Context, address string) (float64, error)
	ClientSeed(ctx context.Context, address string) (string, error)
}

// TransactionLog records settlement bookkeeping for audit reads.
type TransactionLog interface {
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
}

// Rules are the configured game constants.
type Rules struct {
	MinBet        float64
	MaxBet        float64
	HouseEdge     float64
	SessionExpiry time.Duration
}

// GameEngine owns the session state machine: it is the only writer of
// sessions and the only caller of the ledger.
type GameEngine struct {
	store       SessionStore
	ledger      Ledger
	txlog       TransactionLog
	broadcaster Broadcaster
	rules       Rules
	log         *slog.Logger
}

func NewGameEngine(store SessionStore, ledger Ledger, txlog TransactionLog, rules Rules, log *slog.Logger) *GameEngine {
	return &GameEngine{
		store:  store,
		ledger: ledger,
		txlog:  txlog,
		rules:  rules,
		log:    log,
	}
}

// SetBroadcaster attaches the live event feed. Optional; the engine
// settles sessions the same way without one.
func (ge *GameEngine) SetBroadcaster(b Broadcaster) {
	ge.broadcaster = b
}

// StartSession validates the bet, debits the stake, and persists a new
// session in awaiting_action. The response carries the commitment hash
// but never the seed. Creation is all-or-nothing: a failed insert
// compensates the debit.
func (ge *GameEngine) StartSession(ctx context.Context, address string, req *models.StartSessionRequest) (*models.GameSession, error) {
	const op = "GameEngine.StartSession"

	if !req.GameType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGameType, req.GameType)
	}

	if req.BetAmount < ge.rules.MinBet || req.BetAmount > ge.rules.MaxBet {
		return nil, fmt.Errorf("%w: %f outside [%f, %f]",
			ErrInvalidBetAmount, req.BetAmount, ge.rules.MinBet, ge.rules.MaxBet)
	}

	// An omitted client seed resolves to the one published on the wallet,
	// so the user can verify the derivation against a seed they have
	// already seen.
	clientSeed := req.ClientSeed
	if clientSeed == "" {
		seed, err := ge.ledger.ClientSeed(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if seed == "" {
			if seed, err = models.GenerateClientSeed(); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		clientSeed = seed
	}

	// Seed generation precedes the debit so an entropy failure has no
	// side effect at all.
	serverSeed, err := fair.GenerateServerSeed()
	if err != nil {
		ge.log.Error("server seed generation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	nonce, err := ge.store.NextNonce(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := ge.ledger.Debit(ctx, address, req.BetAmount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session := &models.GameSession{
		ID:             uuid.New().String(),
		UserAddress:    address,
		GameType:       req.GameType,
		BetAmount:      req.BetAmount,
		ClientSeed:     clientSeed,
		ServerSeed:     serverSeed,
		ServerSeedHash: fair.HashServerSeed(serverSeed),
		Nonce:          nonce,
		State:          models.StateAwaitingAction,
		CreatedAt:      time.Now(),
	}

	if err := ge.store.InsertSession(ctx, session); err != nil {
		if cerr := ge.ledger.Credit(ctx, address, req.BetAmount); cerr != nil {
			ge.log.Error("failed to compensate debit after insert failure",
				sl.String("session_id", session.ID), sl.Err(cerr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ge.recordTransaction(ctx, session, models.TransactionTypeBet, -req.BetAmount,
		fmt.Sprintf("Placed %s bet", session.GameType))

	ge.log.Info("session started",
		sl.String("session_id", session.ID),
		sl.String("address", address),
		sl.String("game_type", string(session.GameType)))

	return session, nil
}

// CompleteSession settles a bet exactly once. The completion is claimed
// through the store's conditional update before any credit happens, so
// two racing calls cannot both pay out.
func (ge *GameEngine) CompleteSession(ctx context.Context, sessionID string, action *models.CompleteAction) (*models.GameSession, error) {
	const op = "GameEngine.CompleteSession"

	session, err := ge.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch session.State {
	case models.StateCompleted:
		return nil, ErrSessionAlreadyCompleted
	case models.StateExpired:
		return nil, ErrSessionExpired
	}

	if time.Since(session.CreatedAt) > ge.rules.SessionExpiry {
		ge.expireSession(ctx, session)
		return nil, ErrSessionExpired
	}

	result, winAmount, err := ge.evaluate(session, action)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.State = models.StateCompleted
	session.Result = result
	session.WinAmount = winAmount
	session.CompletedAt = &now

	if err := ge.store.ClaimSession(ctx, session); err != nil {
		if errors.Is(err, ErrSessionStateConflict) {
			return nil, ge.refineConflict(ctx, sessionID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if winAmount > 0 {
		if err := ge.ledger.Credit(ctx, session.UserAddress, winAmount); err != nil {
			// The session is settled and the seed revealed; the credit
			// is owed and must be reconciled from the transaction log.
			ge.log.Error("failed to credit winnings",
				sl.String("session_id", session.ID), sl.Err(err))
		}
		ge.recordTransaction(ctx, session, models.TransactionTypeWin, winAmount,
			fmt.Sprintf("Won %.4f on %s (%.2fx)", winAmount, session.GameType, result.Multiplier))
	} else {
		ge.recordTransaction(ctx, session, models.TransactionTypeBet, 0,
			fmt.Sprintf("Lost %s bet", session.GameType))
	}

	ge.log.Info("session completed",
		sl.String("session_id", session.ID),
		sl.String("address", session.UserAddress),
		sl.Any("win_amount", winAmount))

	if ge.broadcaster != nil {
		ge.broadcaster.BroadcastSettlement(session.UserAddress, session)
		if balance, err := ge.ledger.GetBalance(ctx, session.UserAddress); err == nil {
			ge.broadcaster.BroadcastBalance(session.UserAddress, balance)
		}
	}

	return session, nil
}

// VerifySession returns the fairness tuple for independent recomputation.
// The server seed stays withheld until the session is settled.
func (ge *GameEngine) VerifySession(ctx context.Context, sessionID string) (*models.VerifySessionResponse, error) {
	session, err := ge.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &models.VerifySessionResponse{
		SessionID:      session.ID,
		GameType:       session.GameType,
		ClientSeed:     session.ClientSeed,
		ServerSeedHash: session.ServerSeedHash,
		Nonce:          session.Nonce,
		State:          session.State,
		Result:         session.Result,
	}

	if session.State == models.StateCompleted {
		resp.ServerSeed = session.ServerSeed
	}

	return resp, nil
}

// ExpireStale moves sessions past the expiry window into the expired
// state. The stake is not refunded; each expiry leaves a transaction
// log entry for reconciliation.
func (ge *GameEngine) ExpireStale(ctx context.Context) (int, error) {
	const op = "GameEngine.ExpireStale"

	ids, err := ge.store.StaleSessionIDs(ctx, time.Now().Add(-ge.rules.SessionExpiry))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	expired := 0
	for _, id := range ids {
		session, err := ge.store.GetSession(ctx, id)
		if err != nil {
			continue
		}
		if !session.State.Live() {
			continue
		}
		if ge.expireSession(ctx, session) {
			expired++
		}
	}

	return expired, nil
}

func (ge *GameEngine) expireSession(ctx context.Context, session *models.GameSession) bool {
	session.State = models.StateExpired

	if err := ge.store.ClaimSession(ctx, session); err != nil {
		if !errors.Is(err, ErrSessionStateConflict) {
			ge.log.Error("failed to expire session",
				sl.String("session_id", session.ID), sl.Err(err))
		}
		return false
	}

	// The stake stays with the house; the entry is what reconciliation
	// reads to account for the locked bet.
	ge.recordTransaction(ctx, session, models.TransactionTypeExpired, session.BetAmount,
		fmt.Sprintf("Expired %s bet, stake released to house", session.GameType))

	ge.log.Info("session expired", sl.String("session_id", session.ID))
	return true
}

// refineConflict maps a lost CAS race onto the caller-facing error.
func (ge *GameEngine) refineConflict(ctx context.Context, sessionID string) error {
	session, err := ge.store.GetSession(ctx, sessionID)
	if err != nil {
		return ErrSessionAlreadyCompleted
	}
	if session.State == models.StateExpired {
		return ErrSessionExpired
	}
	return ErrSessionAlreadyCompleted
}

func (ge *GameEngine) evaluate(session *models.GameSession, action *models.CompleteAction) (*models.SessionResult, float64, error) {
	switch session.GameType {
	case models.GameTypeDice:
		params := fair.DiceParams{Target: action.Target, Over: action.Over}
		r, err := fair.PlayDice(session.ServerSeed, session.ClientSeed, session.Nonce, params, ge.rules.HouseEdge)
		if err != nil {
			return nil, 0, err
		}

		result := &models.SessionResult{
			Win:        r.Win,
			Multiplier: r.Multiplier,
			Roll:       r.Roll,
			Target:     action.Target,
			Over:       action.Over,
		}
		return result, session.BetAmount * r.Multiplier, nil

	case models.GameTypeCrash:
		params := fair.CrashParams{Cashout: action.Cashout}
		r, err := fair.PlayCrash(session.ServerSeed, session.ClientSeed, session.Nonce, params, ge.rules.HouseEdge)
		if err != nil {
			return nil, 0, err
		}

		result := &models.SessionResult{
			Win:        r.Win,
			Multiplier: r.Multiplier,
			CrashPoint: r.CrashPoint,
			Cashout:    action.Cashout,
		}
		return result, session.BetAmount * r.Multiplier, nil

	case models.GameTypeMines:
		params := fair.MinesParams{MineCount: action.MineCount, Picks: action.Picks}
		r, err := fair.PlayMines(session.ServerSeed, session.ClientSeed, session.Nonce, params, ge.rules.HouseEdge)
		if err != nil {
			return nil, 0, err
		}

		result := &models.SessionResult{
			Win:         r.Win,
			Multiplier:  r.Multiplier,
			MineCells:   r.MineCells,
			Picks:       r.Picks,
			SafeReveals: r.SafeReveals,
			HitMine:     r.HitMine,
		}
		return result, session.BetAmount * r.Multiplier, nil
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrInvalidGameType, session.GameType)
}

func (ge *GameEngine) recordTransaction(ctx context.Context, session *models.GameSession, txType models.TransactionType, amount float64, description string) {
	if ge.txlog == nil {
		return
	}

	tx := &models.Transaction{
		ID:          models.GenerateTransactionID(),
		UserAddress: session.UserAddress,
		Type:        txType,
		Amount:      amount,
		SessionID:   session.ID,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := ge.txlog.RecordTransaction(ctx, tx); err != nil {
		ge.log.Error("failed to record transaction",
			sl.String("session_id", session.ID), sl.Err(err))
	}
}
