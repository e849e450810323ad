package model

import "time"

// WalletRecord is one managed keypair as persisted by the record store.
// The secret key only ever exists here in encrypted form.
type WalletRecord struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	PublicKey           string    `json:"publicKey"`
	EncryptedPrivateKey string    `json:"encryptedPrivateKey"`
	Salt                string    `json:"salt"`
	IV                  string    `json:"iv"`
	CreatedAt           time.Time `json:"createdAt"`
}

// WalletSummary is the public view of a WalletRecord (no ciphertext).
type WalletSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PublicKey string    `json:"publicKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary strips the encrypted material from the record.
func (r WalletRecord) Summary() WalletSummary {
	return WalletSummary{
		ID:        r.ID,
		Name:      r.Name,
		PublicKey: r.PublicKey,
		CreatedAt: r.CreatedAt,
	}
}

// CWTFile represents .cwt backup file structure
type CWTFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	Name       string `json:"name"`
	QR         string `json:"QR"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// WalletData represents decrypted backup payload
type WalletData struct {
	PrivateKey []byte `json:"privateKey"` // 64 bytes (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}
