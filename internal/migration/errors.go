package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/client"
)

var (
	// ErrNothingToMigrate means the selection produced no transfer worth sending.
	ErrNothingToMigrate = errors.New("nothing to migrate")
	// ErrKeyNotFound means no decrypted key was supplied for a selected wallet.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUserRejected is returned by a Signer when the user declines to sign.
	ErrUserRejected = errors.New("user rejected the transaction")
	// ErrCancelled marks wallets that were not processed because the batch was cancelled.
	ErrCancelled = errors.New("migration cancelled")
)

// ValidationError is a malformed request detected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PlanTooLargeError means the selection would not fit in one transaction.
type PlanTooLargeError struct {
	Instructions int
	Limit        int
	MaxTokens    int
}

func (e *PlanTooLargeError) Error() string {
	return fmt.Sprintf("selection needs %d instructions, limit is %d: select at most %d tokens",
		e.Instructions, e.Limit, e.MaxTokens)
}

// KeyMismatchError means the supplied key does not derive the wallet address.
type KeyMismatchError struct {
	Wallet  string
	Derived string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("key mismatch: key for %s derives %s", e.Wallet, e.Derived)
}

// SimulationFailedError means the dry run rejected the transaction. Nothing was sent.
type SimulationFailedError struct {
	Details string
	Logs    []string
}

func (e *SimulationFailedError) Error() string {
	return "simulation failed: " + e.Details
}

// SubmissionKind classifies why a transaction did not land.
type SubmissionKind int

const (
	SubmissionRejected SubmissionKind = iota
	SubmissionUserRejected
	SubmissionInsufficientFunds
	SubmissionBlockhashExpired
	SubmissionTimeout
)

func (k SubmissionKind) String() string {
	switch k {
	case SubmissionUserRejected:
		return "user rejected"
	case SubmissionInsufficientFunds:
		return "insufficient funds"
	case SubmissionBlockhashExpired:
		return "blockhash expired"
	case SubmissionTimeout:
		return "timeout"
	default:
		return "rejected"
	}
}

// SubmissionError is a failure while signing, sending or confirming.
// Signature is set when the transaction was sent before the failure.
type SubmissionError struct {
	Kind      SubmissionKind
	Signature string
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("submission failed (%s, signature %s): %v", e.Kind, e.Signature, e.Err)
	}
	return fmt.Sprintf("submission failed (%s): %v", e.Kind, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PartialBatchFailureError reports that some wallets of a batch failed.
type PartialBatchFailureError struct {
	Failed int
	Total  int
	Err    error
}

func (e *PartialBatchFailureError) Error() string {
	return fmt.Sprintf("%d of %d wallets failed: %v", e.Failed, e.Total, e.Err)
}

func (e *PartialBatchFailureError) Unwrap() error { return e.Err }

// newSubmissionError classifies err into a SubmissionError.
func newSubmissionError(err error, sig string) *SubmissionError {
	return &SubmissionError{Kind: classifySubmission(err), Signature: sig, Err: err}
}

func classifySubmission(err error) SubmissionKind {
	switch {
	case errors.Is(err, ErrUserRejected):
		return SubmissionUserRejected
	case errors.Is(err, client.ErrBlockhashExpired):
		return SubmissionBlockhashExpired
	case errors.Is(err, client.ErrConfirmTimeout), errors.Is(err, context.DeadlineExceeded):
		return SubmissionTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient lamports"),
		strings.Contains(msg, "insufficientfundsforfee"),
		strings.Contains(msg, "no record of a prior credit"):
		return SubmissionInsufficientFunds
	case strings.Contains(msg, "blockhash not found"),
		strings.Contains(msg, "block height exceeded"):
		return SubmissionBlockhashExpired
	}
	return SubmissionRejected
}

// severity orders errors for batch summaries, highest first.
func severity(err error) int {
	var (
		mismatch   *KeyMismatchError
		submission *SubmissionError
		simulation *SimulationFailedError
		tooLarge   *PlanTooLargeError
		validation *ValidationError
	)
	switch {
	case errors.As(err, &mismatch), errors.Is(err, ErrKeyNotFound):
		return 4
	case errors.As(err, &submission):
		return 3
	case errors.As(err, &simulation), errors.As(err, &tooLarge), errors.As(err, &validation):
		return 2
	case errors.Is(err, ErrCancelled):
		return 0
	default:
		return 1
	}
}
