package services

import "fairbet-backend/internal/models"

// Broadcaster pushes settlement facts to connected clients. Display
// concerns like crash-curve animation live entirely on the client; the
// backend only ever announces settled sessions.
type Broadcaster interface {
	BroadcastSettlement(address string, session *models.GameSession)
	BroadcastBalance(address string, balance float64)
}
