package model

// GenerateRequest represents request for POST /wallets
type GenerateRequest struct {
	Name string `json:"name"`
}

// ImportRequest represents request for POST /wallets/import
type ImportRequest struct {
	Name      string `json:"name"`
	SecretKey Secret `json:"secretKey" swaggertype:"string"` // base58 encoded 64-byte secret
}

// RenameRequest represents request for PATCH /wallets/{id}
type RenameRequest struct {
	Name string `json:"name"`
}

// GenerateResponse represents response for POST /wallets and POST /wallets/import
type GenerateResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Wallet  WalletSummary `json:"wallet"`
	QR      string        `json:"qr,omitempty"`
}

// UnlockRequest represents request for POST /session/unlock
type UnlockRequest struct {
	Password Secret `json:"password" swaggertype:"string"`
}

// SessionResponse represents response for POST /session/unlock and POST /session/lock
type SessionResponse struct {
	Locked bool `json:"locked"`
}
