package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func ValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

func GenerateTransactionID() string {
	return fmt.Sprintf("tx_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateClientSeed() (string, error) {
	bytes := make([]byte, 16) // 128 bits of entropy
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate client seed: %v", err)
	}
	return hex.EncodeToString(bytes), nil
}

func NewWallet(address string, startingBalance float64) (*Wallet, error) {
	clientSeed, err := GenerateClientSeed()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	return &Wallet{
		Address:    address,
		Balance:    startingBalance,
		ClientSeed: clientSeed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
