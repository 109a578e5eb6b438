package services

const (
	KeyWallet           = "wallet:%s"
	KeySession          = "session:%s"
	KeyUserNonce        = "user:%s:nonce"
	KeyActiveSessions   = "sessions:active"
	KeyUserHistory      = "user:%s:history"
	KeyTransaction      = "transaction:%s"
	KeyUserTransactions = "user:%s:transactions"
	KeyRateLimit        = "ratelimit:%s:%s"
)
