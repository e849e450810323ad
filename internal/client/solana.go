package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
)

const (
	knownAccountsCacheSize = 1024
	defaultPollInterval    = 500 * time.Millisecond
)

var (
	ErrBlockhashExpired = errors.New("blockhash expired before confirmation")
	ErrConfirmTimeout   = errors.New("timed out waiting for confirmation")
)

// Blockhash is a recent blockhash plus the last block height at which a
// transaction referencing it can still land.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// TransactionError is an execution failure reported by the network, either
// from simulation or from a landed transaction.
type TransactionError struct {
	Signature string
	Err       any
	Logs      []string
}

func (e *TransactionError) Error() string {
	b, _ := json.Marshal(e.Err)
	if e.Signature != "" {
		return fmt.Sprintf("transaction %s failed: %s", e.Signature, b)
	}
	return fmt.Sprintf("transaction failed: %s", b)
}

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient      *rpc.Client
	rpcURL         string
	knownAccounts  *lru.Cache // accounts observed to exist
	sendAttempts   uint
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            zerolog.Logger
}

// NewSolanaClient creates a new Solana RPC client.
// sendAttempts bounds raw-send retries on transport errors.
func NewSolanaClient(rpcURL string, sendAttempts uint, confirmTimeout time.Duration, log zerolog.Logger) (*SolanaClient, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, errors.New("rpc url is required")
	}
	if sendAttempts == 0 {
		sendAttempts = 1
	}
	cache, err := lru.New(knownAccountsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create account cache: %w", err)
	}

	return &SolanaClient{
		rpcClient:      rpc.New(rpcURL),
		rpcURL:         rpcURL,
		knownAccounts:  cache,
		sendAttempts:   sendAttempts,
		confirmTimeout: confirmTimeout,
		pollInterval:   defaultPollInterval,
		log:            log,
	}, nil
}

// GetBalance gets SOL balance in lamports
func (c *SolanaClient) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// GetLatestBlockhash (GetRecentBlockhash is deprecated)
func (c *SolanaClient) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return Blockhash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	if recent == nil || recent.Value == nil {
		return Blockhash{}, errors.New("failed to get recent blockhash: empty response")
	}
	return Blockhash{
		Hash:                 recent.Value.Blockhash,
		LastValidBlockHeight: recent.Value.LastValidBlockHeight,
	}, nil
}

// AccountExists reports whether an account is allocated on chain. Positive
// answers are cached; negative answers always go to the network because a
// previous transaction in the same batch may have created the account.
func (c *SolanaClient) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	if c.knownAccounts.Contains(address) {
		return true, nil
	}

	info, err := c.rpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if isAccountNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account info: %w", err)
	}
	if info == nil || info.Value == nil {
		return false, nil
	}

	c.knownAccounts.Add(address, struct{}{})
	return true, nil
}

// SimulateTransaction dry-runs tx without signature verification.
// A simulated execution failure is returned as *TransactionError.
func (c *SolanaClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) error {
	out, err := c.rpcClient.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:  false,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return fmt.Errorf("failed to simulate transaction: %w", err)
	}
	if out == nil || out.Value == nil {
		return errors.New("failed to simulate transaction: empty response")
	}
	if out.Value.Err != nil {
		return &TransactionError{Err: out.Value.Err, Logs: out.Value.Logs}
	}
	return nil
}

// SendRawTransaction submits a signed, serialized transaction. Transport
// failures are retried up to sendAttempts times; RPC rejections are not.
func (c *SolanaClient) SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error) {
	attempt := 0
	sig, err := backoff.Retry(ctx, func() (solana.Signature, error) {
		attempt++
		sig, err := c.rpcClient.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
			SkipPreflight:       false, // Transaction validation before node
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err == nil {
			return sig, nil
		}

		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return solana.Signature{}, backoff.Permanent(err)
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("send transaction failed, retrying")
		return solana.Signature{}, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.sendAttempts),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// ConfirmTransaction waits until sig reaches confirmed commitment.
// Returns ErrBlockhashExpired once the block height passes the blockhash
// validity window, ErrConfirmTimeout after confirmTimeout, or
// *TransactionError when the transaction landed but failed.
func (c *SolanaClient) ConfirmTransaction(ctx context.Context, sig solana.Signature, blockhash Blockhash) error {
	waitCtx := ctx
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		done, err := c.checkSignature(waitCtx, sig, blockhash)
		if done {
			return err
		}
		if err != nil {
			c.log.Debug().Err(err).Str("signature", sig.String()).Msg("signature status poll failed")
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrConfirmTimeout
		case <-ticker.C:
		}
	}
}

// checkSignature returns done=true when polling should stop with err.
func (c *SolanaClient) checkSignature(ctx context.Context, sig solana.Signature, blockhash Blockhash) (bool, error) {
	statuses, err := c.rpcClient.GetSignatureStatuses(ctx, false, sig)
	if err != nil && !errors.Is(err, rpc.ErrNotFound) {
		return false, err
	}

	if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
		st := statuses.Value[0]
		if st.Err != nil {
			return true, &TransactionError{Signature: sig.String(), Err: st.Err}
		}
		switch st.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return true, nil
		}
	}

	height, err := c.rpcClient.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return false, err
	}
	if height > blockhash.LastValidBlockHeight {
		return true, ErrBlockhashExpired
	}
	return false, nil
}

// parsedTokenAccount represents jsonParsed token account data from RPC
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint,omitempty"`
			Owner       string `json:"owner,omitempty"`
			TokenAmount struct {
				Amount         string `json:"amount,omitempty"`
				Decimals       uint8  `json:"decimals,omitempty"`
				UiAmountString string `json:"uiAmountString,omitempty"`
			} `json:"tokenAmount,omitempty"`
		} `json:"info,omitempty"`
		Type string `json:"type,omitempty"`
	} `json:"parsed,omitempty"`
}

// GetTokenHoldings lists the non-empty SPL token balances owned by owner.
func (c *SolanaClient) GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]model.TokenHolding, error) {
	out, err := c.rpcClient.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts: %w", err)
	}

	holdings := make([]model.TokenHolding, 0, len(out.Value))
	for _, acc := range out.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}

		var parsed parsedTokenAccount
		if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse token account %s: %w", acc.Pubkey, err)
		}

		amount, err := strconv.ParseUint(parsed.Parsed.Info.TokenAmount.Amount, 10, 64)
		if err != nil || amount == 0 {
			continue
		}

		holdings = append(holdings, model.TokenHolding{
			Mint:     parsed.Parsed.Info.Mint,
			UIAmount: parsed.Parsed.Info.TokenAmount.UiAmountString,
			Decimals: parsed.Parsed.Info.TokenAmount.Decimals,
		})
	}
	return holdings, nil
}

// isAccountNotFoundError checks if error indicates that account doesn't exist
func isAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
