package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/hashicorp/go-multierror"
)

// MultiWalletMigrationResult aggregates a batch. TotalWallets always equals
// SuccessfulWallets + FailedWallets and Success is true only when no wallet failed.
type MultiWalletMigrationResult struct {
	Success           bool                `json:"success"`
	TotalWallets      int                 `json:"totalWallets"`
	SuccessfulWallets int                 `json:"successfulWallets"`
	FailedWallets     int                 `json:"failedWallets"`
	Signatures        []string            `json:"signatures"`
	Errors            []model.WalletError `json:"errors"`

	causes []walletFailure
}

type walletFailure struct {
	wallet string
	err    error
}

func newMultiWalletMigrationResult(total int) *MultiWalletMigrationResult {
	return &MultiWalletMigrationResult{
		TotalWallets: total,
		Signatures:   []string{},
		Errors:       []model.WalletError{},
	}
}

// recordSuccess counts a wallet as migrated. An empty signature marks a
// wallet that had nothing selected.
func (r *MultiWalletMigrationResult) recordSuccess(signature string) {
	r.SuccessfulWallets++
	if signature != "" {
		r.Signatures = append(r.Signatures, signature)
	}
	r.Success = r.FailedWallets == 0
}

func (r *MultiWalletMigrationResult) recordFailure(wallet string, err error) {
	r.FailedWallets++
	r.Errors = append(r.Errors, model.WalletError{Wallet: wallet, Error: err.Error()})
	r.causes = append(r.causes, walletFailure{wallet: wallet, err: err})
	r.Success = false
}

// Err returns nil when every wallet succeeded, otherwise a
// *PartialBatchFailureError wrapping each wallet's error.
func (r *MultiWalletMigrationResult) Err() error {
	if r.FailedWallets == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, c := range r.causes {
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", c.wallet, c.err))
	}
	return &PartialBatchFailureError{
		Failed: r.FailedWallets,
		Total:  r.TotalWallets,
		Err:    merr.ErrorOrNil(),
	}
}

// Summary reports success and failure counts plus up to limit of the most
// severe per-wallet errors.
func (r *MultiWalletMigrationResult) Summary(limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d wallets migrated, %d failed", r.SuccessfulWallets, r.TotalWallets, r.FailedWallets)
	if len(r.causes) == 0 || limit <= 0 {
		return b.String()
	}

	worst := make([]walletFailure, len(r.causes))
	copy(worst, r.causes)
	sort.SliceStable(worst, func(i, j int) bool {
		return severity(worst[i].err) > severity(worst[j].err)
	})
	if len(worst) > limit {
		worst = worst[:limit]
	}

	for _, f := range worst {
		fmt.Fprintf(&b, "\n  %s: %v", f.wallet, f.err)
	}
	if hidden := len(r.causes) - len(worst); hidden > 0 {
		fmt.Fprintf(&b, "\n  ...and %d more", hidden)
	}
	return b.String()
}
