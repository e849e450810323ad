package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/client"
	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// LedgerClient is the network surface the executor needs.
type LedgerClient interface {
	AccountLookup
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (client.Blockhash, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) error
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, blockhash client.Blockhash) error
}

// FeeExemptionOracle decides whether an invite code waives the service fee.
type FeeExemptionOracle interface {
	IsExempt(ctx context.Context, feature, inviteCode string) (bool, error)
}

// ProgressFunc is called before each wallet of a batch with a 1-based index.
type ProgressFunc func(current, total int, status string)

// Config holds the fee schedule. Fees are in lamports.
type Config struct {
	FeeRecipient    solana.PublicKey
	SingleWalletFee uint64
	MultiWalletFee  uint64
	PriorityFee     uint64 // micro-lamports per compute unit
}

// Executor runs single and multi wallet migrations.
type Executor struct {
	ledger  LedgerClient
	oracle  FeeExemptionOracle
	planner *Planner
	cfg     Config
	log     zerolog.Logger
}

// NewExecutor creates an executor. A nil oracle never grants exemptions.
func NewExecutor(ledger LedgerClient, oracle FeeExemptionOracle, cfg Config, log zerolog.Logger) *Executor {
	return &Executor{
		ledger:  ledger,
		oracle:  oracle,
		planner: NewPlanner(ledger, cfg.FeeRecipient, cfg.PriorityFee),
		cfg:     cfg,
		log:     log,
	}
}

// ExecuteSingleWalletMigration plans, simulates, signs through signer,
// submits and confirms one transaction. On failure the returned result
// carries the error text and err is the typed cause.
func (e *Executor) ExecuteSingleWalletMigration(ctx context.Context, req model.MigrationRequest, signer Signer) (model.MigrationResult, error) {
	res, err := e.executeSingle(ctx, req, signer)
	if err != nil {
		e.log.Error().Err(err).Str("wallet", req.SourceWallet).Msg("single wallet migration failed")
		return model.MigrationResult{Success: false, Error: err.Error()}, err
	}
	e.log.Info().
		Str("wallet", req.SourceWallet).
		Str("signature", res.Signature).
		Int("tokens", res.TokensTransferred).
		Msg("single wallet migration confirmed")
	return res, nil
}

func (e *Executor) executeSingle(ctx context.Context, req model.MigrationRequest, signer Signer) (model.MigrationResult, error) {
	source, err := parseAddress("sourceWallet", req.SourceWallet)
	if err != nil {
		return model.MigrationResult{}, err
	}
	dest, err := parseAddress("destinationAddress", req.DestinationAddress)
	if err != nil {
		return model.MigrationResult{}, err
	}
	if source.Equals(dest) {
		return model.MigrationResult{}, &ValidationError{Field: "destinationAddress", Reason: "must differ from the source wallet"}
	}
	if signer == nil {
		return model.MigrationResult{}, &ValidationError{Field: "signer", Reason: "no signer connected"}
	}
	if !signer.PublicKey().Equals(source) {
		return model.MigrationResult{}, &KeyMismatchError{Wallet: source.String(), Derived: signer.PublicKey().String()}
	}
	if len(req.SelectedTokens) == 0 && !req.IncludeSol {
		return model.MigrationResult{}, &ValidationError{Field: "selection", Reason: "no tokens or SOL selected"}
	}

	// selections too large even without the fee fail before the oracle call
	if err := checkPlanSize(len(req.SelectedTokens), req.IncludeSol, true); err != nil {
		return model.MigrationResult{}, err
	}
	exempt := e.feeExempt(ctx, client.FeatureSingleWalletMigration, req.InviteCode)
	plan, err := e.plan(ctx, source, dest, req.SelectedTokens, req.IncludeSol, exempt, e.cfg.SingleWalletFee)
	if err != nil {
		return model.MigrationResult{}, err
	}

	blockhash, err := e.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return model.MigrationResult{}, err
	}
	tx, err := solana.NewTransaction(plan.Instructions, blockhash.Hash, solana.TransactionPayer(source))
	if err != nil {
		return model.MigrationResult{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := e.simulate(ctx, tx); err != nil {
		return model.MigrationResult{}, err
	}

	if err := signer.SignTransaction(ctx, tx); err != nil {
		return model.MigrationResult{}, newSubmissionError(err, "")
	}

	sig, err := e.submit(ctx, tx, blockhash)
	if err != nil {
		return model.MigrationResult{}, err
	}
	return model.MigrationResult{
		Success:           true,
		TokensTransferred: plan.TokensTransferred,
		Signature:         sig,
	}, nil
}

// ExecuteMultiWalletMigration migrates each selected wallet in order using
// the caller's decrypted keys, keyed by wallet address. A wallet's failure is
// recorded and the loop moves on. err is non-nil only when the request itself
// is invalid, in which case no wallet was touched. Cancelling ctx stops the
// batch between wallets and records the remaining wallets as cancelled.
func (e *Executor) ExecuteMultiWalletMigration(
	ctx context.Context,
	req model.MultiWalletMigrationRequest,
	keys map[string][]byte,
	onProgress ProgressFunc,
) (*MultiWalletMigrationResult, error) {
	dest, err := parseAddress("destinationAddress", req.DestinationAddress)
	if err != nil {
		return nil, err
	}
	if len(req.Wallets) == 0 {
		return nil, &ValidationError{Field: "wallets", Reason: "no wallets selected"}
	}

	exempt := e.feeExempt(ctx, client.FeatureMultiWalletMigration, req.InviteCode)
	total := len(req.Wallets)
	result := newMultiWalletMigrationResult(total)

	for i, w := range req.Wallets {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.recordFailure(w.Address, fmt.Errorf("%w: %v", ErrCancelled, ctxErr))
			continue
		}

		if onProgress != nil {
			onProgress(i+1, total, fmt.Sprintf("Migrating wallet %d of %d (%s)", i+1, total, w.Address))
		}

		sig, err := e.migrateWallet(ctx, w, dest, keys, exempt)
		if err != nil {
			e.log.Warn().Err(err).Str("wallet", w.Address).Int("index", i+1).Msg("wallet migration failed")
			result.recordFailure(w.Address, err)
			continue
		}
		e.log.Info().Str("wallet", w.Address).Str("signature", sig).Int("index", i+1).Msg("wallet migrated")
		result.recordSuccess(sig)
	}

	e.log.Info().
		Int("total", result.TotalWallets).
		Int("succeeded", result.SuccessfulWallets).
		Int("failed", result.FailedWallets).
		Msg("multi wallet migration finished")
	return result, nil
}

// migrateWallet returns an empty signature for wallets with nothing selected.
func (e *Executor) migrateWallet(
	ctx context.Context,
	w model.WalletSelection,
	dest solana.PublicKey,
	keys map[string][]byte,
	exempt bool,
) (string, error) {
	owner, err := parseAddress("wallet", w.Address)
	if err != nil {
		return "", err
	}
	if owner.Equals(dest) {
		return "", &ValidationError{Field: "wallet", Reason: "source wallet is the destination"}
	}

	raw, ok := keys[w.Address]
	if !ok || len(raw) == 0 {
		return "", fmt.Errorf("%w for wallet %s", ErrKeyNotFound, w.Address)
	}
	derived, err := crypto.DerivePublicKey(raw)
	if err != nil {
		return "", &ValidationError{Field: "key", Reason: fmt.Sprintf("secret key for %s: %v", w.Address, err)}
	}
	if pub := solana.PublicKeyFromBytes(derived); !pub.Equals(owner) {
		return "", &KeyMismatchError{Wallet: w.Address, Derived: pub.String()}
	}
	if _, err := crypto.CheckKeypair(raw); err != nil {
		// seed matches the wallet but the stored public half does not
		return "", &KeyMismatchError{Wallet: w.Address, Derived: solana.PrivateKey(raw).PublicKey().String()}
	}
	key := solana.PrivateKey(raw)

	if len(w.SelectedTokens) == 0 && !w.IncludeSol {
		e.log.Debug().Str("wallet", w.Address).Msg("nothing selected, skipping wallet")
		return "", nil
	}

	plan, err := e.plan(ctx, owner, dest, w.SelectedTokens, w.IncludeSol, exempt, e.cfg.MultiWalletFee)
	if err != nil {
		return "", err
	}

	blockhash, err := e.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := solana.NewTransaction(plan.Instructions, blockhash.Hash, solana.TransactionPayer(owner))
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := signWithKey(tx, key); err != nil {
		return "", newSubmissionError(err, "")
	}
	return e.submit(ctx, tx, blockhash)
}

// plan checks the selection size before touching the network, then reads
// the SOL balance when needed and builds the plan.
func (e *Executor) plan(
	ctx context.Context,
	owner, dest solana.PublicKey,
	tokens []model.TokenHolding,
	includeSol, exempt bool,
	fee uint64,
) (*Plan, error) {
	if err := checkPlanSize(len(tokens), includeSol, exempt); err != nil {
		return nil, err
	}

	var balance uint64
	if includeSol {
		var err error
		balance, err = e.ledger.GetBalance(ctx, owner)
		if err != nil {
			return nil, err
		}
	}

	return e.planner.Plan(ctx, PlanInput{
		Owner:       owner,
		Destination: dest,
		Tokens:      tokens,
		IncludeSol:  includeSol,
		SOLBalance:  balance,
		FeeExempt:   exempt,
		FeeLamports: fee,
	})
}

func checkPlanSize(tokenCount int, includeSol, exempt bool) error {
	if n := EstimateInstructions(tokenCount, includeSol, exempt); n > MaxInstructions {
		return &PlanTooLargeError{
			Instructions: n,
			Limit:        MaxInstructions,
			MaxTokens:    MaxSelectableTokens(includeSol, exempt),
		}
	}
	return nil
}

// simulate dry-runs an unsigned copy of tx with placeholder signatures.
func (e *Executor) simulate(ctx context.Context, tx *solana.Transaction) error {
	unsigned := *tx
	unsigned.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	err := e.ledger.SimulateTransaction(ctx, &unsigned)
	if err == nil {
		return nil
	}
	var txErr *client.TransactionError
	if errors.As(err, &txErr) {
		return &SimulationFailedError{Details: txErr.Error(), Logs: txErr.Logs}
	}
	return &SimulationFailedError{Details: err.Error()}
}

// submit sends a signed transaction and waits for confirmation.
func (e *Executor) submit(ctx context.Context, tx *solana.Transaction, blockhash client.Blockhash) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	sig, err := e.ledger.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", newSubmissionError(err, "")
	}
	if err := e.ledger.ConfirmTransaction(ctx, sig, blockhash); err != nil {
		return "", newSubmissionError(err, sig.String())
	}
	return sig.String(), nil
}

func (e *Executor) feeExempt(ctx context.Context, feature, inviteCode string) bool {
	if e.oracle == nil || strings.TrimSpace(inviteCode) == "" {
		return false
	}
	exempt, err := e.oracle.IsExempt(ctx, feature, inviteCode)
	if err != nil {
		e.log.Warn().Err(err).Str("feature", feature).Msg("fee exemption check failed, charging fee")
		return false
	}
	return exempt
}

func parseAddress(field, address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return solana.PublicKey{}, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a valid address", address)}
	}
	return pk, nil
}
