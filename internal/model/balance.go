package model

// TokenHolding is one SPL token balance of a wallet.
type TokenHolding struct {
	Mint     string `json:"mint"`
	UIAmount string `json:"uiAmount"` // human readable amount, e.g. "12.5"
	Decimals uint8  `json:"decimals"`
}

// BalanceResponse represents response for GET /wallets/{id}/balance
type BalanceResponse struct {
	Address string         `json:"address"`
	SOL     string         `json:"sol"`
	Tokens  []TokenHolding `json:"tokens"`
}
