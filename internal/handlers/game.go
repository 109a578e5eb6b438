package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fairbet-backend/internal/fair"
	"fairbet-backend/internal/models"
	"fairbet-backend/internal/services"
)

type GameHandler struct {
	engine       *services.GameEngine
	redisService *services.RedisService
}

func NewGameHandler(engine *services.GameEngine, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		engine:       engine,
		redisService: redisService,
	}
}

// errorStatus maps the engine's typed error kinds onto distinct HTTP
// responses. Validation and state-conflict errors must not be retried
// with the same request; only unknown failures map to 500.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidBetAmount):
		return http.StatusBadRequest, "invalid_bet_amount"
	case errors.Is(err, services.ErrInvalidGameType):
		return http.StatusBadRequest, "invalid_game_type"
	case errors.Is(err, fair.ErrInvalidGameParameters):
		return http.StatusBadRequest, "invalid_game_parameters"
	case errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "insufficient_balance"
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, services.ErrSessionAlreadyCompleted):
		return http.StatusConflict, "session_already_completed"
	case errors.Is(err, services.ErrSessionExpired):
		return http.StatusGone, "session_expired"
	case errors.Is(err, fair.ErrEntropyUnavailable):
		return http.StatusServiceUnavailable, "entropy_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	c.JSON(status, gin.H{
		"error": code,
	})
}

// StartSession accepts a bet and returns the fairness commitment. The
// server seed itself never appears in this response.
func (h *GameHandler) StartSession(c *gin.Context) {
	address := c.GetString("user_address")

	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	session, err := h.engine.StartSession(c.Request.Context(), address, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": models.StartSessionResponse{
			SessionID:      session.ID,
			ServerSeedHash: session.ServerSeedHash,
			Nonce:          session.Nonce,
		},
	})
}

// CompleteSession settles the bet and reveals the server seed so the
// caller can verify the commitment and recompute the outcome.
func (h *GameHandler) CompleteSession(c *gin.Context) {
	address := c.GetString("user_address")
	sessionID := c.Param("id")

	var req models.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// ownership check before any settlement work
	owner, err := h.redisService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if owner.UserAddress != address {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You don't own this session",
		})
		return
	}

	settled, err := h.engine.CompleteSession(c.Request.Context(), sessionID, &req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"settlement": gin.H{
			"session_id":  settled.ID,
			"result":      settled.Result,
			"win_amount":  settled.WinAmount,
			"server_seed": settled.ServerSeed,
		},
	})
}

// VerifySession is the public fairness read: the stored tuple anyone
// can use to recompute the outcome. No state change.
func (h *GameHandler) VerifySession(c *gin.Context) {
	resp, err := h.engine.VerifySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"verification": resp,
	})
}

func (h *GameHandler) GetBalance(c *gin.Context) {
	address := c.GetString("user_address")

	wallet, err := h.redisService.GetWallet(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get wallet",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": models.BalanceResponse{
			Balance:      wallet.Balance,
			TotalWagered: wallet.TotalWagered,
			TotalWon:     wallet.TotalWon,
		},
	})
}

func (h *GameHandler) GetHistory(c *gin.Context) {
	address := c.GetString("user_address")
	limit := parseLimit(c.DefaultQuery("limit", "50"))

	sessions, err := h.redisService.GetSessionHistory(c.Request.Context(), address, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get history",
			"details": err.Error(),
		})
		return
	}

	response := []gin.H{}
	for _, session := range sessions {
		response = append(response, gin.H{
			"id":           session.ID,
			"game_type":    session.GameType,
			"bet_amount":   session.BetAmount,
			"win_amount":   session.WinAmount,
			"state":        session.State,
			"result":       session.Result,
			"created_at":   session.CreatedAt,
			"completed_at": session.CompletedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": response,
		"count":    len(response),
	})
}

func (h *GameHandler) GetTransactions(c *gin.Context) {
	address := c.GetString("user_address")
	limit := parseLimit(c.DefaultQuery("limit", "50"))

	transactions, err := h.redisService.GetUserTransactions(c.Request.Context(), address, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get transactions",
			"details": err.Error(),
		})
		return
	}

	if transactions == nil {
		transactions = []*models.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": transactions,
		"count":        len(transactions),
	})
}

func parseLimit(raw string) int64 {
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
