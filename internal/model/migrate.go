package model

// MigrationRequest moves the selected holdings of one wallet to a destination.
type MigrationRequest struct {
	SourceWallet       string         `json:"sourceWallet"`
	DestinationAddress string         `json:"destinationAddress"`
	SelectedTokens     []TokenHolding `json:"selectedTokens"`
	IncludeSol         bool           `json:"includeSol"`
	InviteCode         string         `json:"inviteCode,omitempty"`
}

// WalletSelection is one source wallet of a multi-wallet migration.
type WalletSelection struct {
	Address        string         `json:"address"`
	SelectedTokens []TokenHolding `json:"selectedTokens"`
	IncludeSol     bool           `json:"includeSol"`
}

// MultiWalletMigrationRequest consolidates many wallets into one destination.
// Wallets are processed in slice order.
type MultiWalletMigrationRequest struct {
	Wallets            []WalletSelection `json:"wallets"`
	DestinationAddress string            `json:"destinationAddress"`
	InviteCode         string            `json:"inviteCode,omitempty"`
}

// MigrationResult is the outcome of a single-wallet migration.
type MigrationResult struct {
	Success           bool   `json:"success"`
	TokensTransferred int    `json:"tokensTransferred"`
	Signature         string `json:"signature,omitempty"`
	Error             string `json:"error,omitempty"`
}

// WalletError is the failure recorded for one wallet of a batch.
type WalletError struct {
	Wallet string `json:"wallet"`
	Error  string `json:"error"`
}
