package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for .cwt backups
// Security is prioritized over performance
//
// N=2^18 (~256MB RAM, 0.5-2s) - optimal balance:
//   - Maximum security while remaining compatible with mobile devices
//   - Brute-force attacks remain extremely expensive
var (
	scryptN = 1 << 18
	scryptR = 8
	scryptP = 1
)

const (
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
	backupExt    = ".cwt"
)

var (
	ErrBackupExists = errors.New("backup file is not empty")
	ErrBadBackup    = errors.New("invalid backup password or corrupted backup")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportBackup encrypts walletData and writes it to a .cwt file.
// password must be []byte for security (caller should zero it after use)
func ExportBackup(filePath string, header model.CWTFile, walletData *model.WalletData, password []byte) error {
	if !strings.HasSuffix(filePath, backupExt) {
		return errors.New("file must have .cwt extension")
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	// Refuse to overwrite a non-empty file
	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return fmt.Errorf("%w: %s", ErrBackupExists, filePath)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := backupCipher(password, salt)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(walletData)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	header.Salt = base64.StdEncoding.EncodeToString(salt)
	header.Nonce = base64.StdEncoding.EncodeToString(nonce)
	header.CipherText = base64.StdEncoding.EncodeToString(ciphertext)

	fileData, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cwt file: %w", err)
	}

	// UTF-8 BOM for proper display in Windows
	fileDataWithBOM := append(append([]byte{}, utf8BOM...), fileData...)

	if err := os.WriteFile(filePath, fileDataWithBOM, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ImportBackup reads and decrypts a .cwt file.
// Caller should clear the returned WalletData.PrivateKey after use.
func ImportBackup(filePath string, password []byte) (*model.CWTFile, *model.WalletData, error) {
	cwtFile, err := ReadBackupHeader(filePath)
	if err != nil {
		return nil, nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(cwtFile.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(cwtFile.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(cwtFile.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := backupCipher(password, salt)
	if err != nil {
		return nil, nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, nil, ErrBadBackup
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, ErrBadBackup
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var walletData model.WalletData
	if err := json.Unmarshal(plaintext, &walletData); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal wallet data: %w", err)
	}
	if len(walletData.PrivateKey) != SecretKeySize {
		clear(walletData.PrivateKey)
		return nil, nil, ErrInvalidKeyFormat
	}

	return cwtFile, &walletData, nil
}

// ReadBackupHeader reads only the plaintext header of a .cwt file (without decryption)
func ReadBackupHeader(filePath string) (*model.CWTFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file does not exist")
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.Size() == 0 {
		return nil, errors.New("file is empty")
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	var cwtFile model.CWTFile
	if err := json.Unmarshal(fileData, &cwtFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cwt file: %w", err)
	}
	return &cwtFile, nil
}

func backupCipher(password, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
