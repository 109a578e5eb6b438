package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fairbet-backend/internal/models"
	"fairbet-backend/internal/services"
)

type AuthHandler struct {
	jwtService   *services.JWTService
	redisService *services.RedisService
}

func NewAuthHandler(jwtService *services.JWTService, redisService *services.RedisService) *AuthHandler {
	return &AuthHandler{
		jwtService:   jwtService,
		redisService: redisService,
	}
}

// ConnectWallet issues an API token for a wallet address. On-chain
// ownership proof happens in the wallet-connect layer in front of this
// service; here the address only has to be well formed.
func (h *AuthHandler) ConnectWallet(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if !models.ValidAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid wallet address",
		})
		return
	}

	token, err := h.jwtService.GenerateToken(req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to issue token",
		})
		return
	}

	// provision the wallet so the first bet sees a balance
	wallet, err := h.redisService.GetWallet(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load wallet",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"wallet": gin.H{
			"address":     wallet.Address,
			"balance":     wallet.Balance,
			"client_seed": wallet.ClientSeed,
		},
	})
}
