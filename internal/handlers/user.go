package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fairbet-backend/internal/services"
)

type UserHandler struct {
	redisService *services.RedisService
}

func NewUserHandler(redisService *services.RedisService) *UserHandler {
	return &UserHandler{
		redisService: redisService,
	}
}

// GetProfile returns the wallet plus the fairness defaults a client
// needs before betting: its client seed and the balance.
func (h *UserHandler) GetProfile(c *gin.Context) {
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
		"profile": gin.H{
			"address":       wallet.Address,
			"balance":       wallet.Balance,
			"total_wagered": wallet.TotalWagered,
			"total_won":     wallet.TotalWon,
			"client_seed":   wallet.ClientSeed,
			"created_at":    wallet.CreatedAt,
		},
	})
}
