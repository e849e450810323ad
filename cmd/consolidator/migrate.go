package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/solana"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	migrateFuncName = "migrate"
	migrateCmdDes   = "Move tokens and SOL from vault wallets to a destination address."
)

// selection holds the flags shared by single and multi mode.
type selection struct {
	tokens     []string
	allTokens  bool
	includeSol bool
	inviteCode string
	yes        bool
}

func (s *selection) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&s.tokens, "token", nil, "mint address to migrate (repeatable)")
	flags.BoolVar(&s.allTokens, "all-tokens", false, "migrate every non-empty token account")
	flags.BoolVar(&s.includeSol, "sol", false, "migrate SOL above the rent reserve")
	flags.StringVar(&s.inviteCode, "invite", "", "invite code for a service fee exemption")
	flags.BoolVarP(&s.yes, "yes", "y", false, "sign without interactive confirmation")
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   migrateFuncName,
		Short: migrateCmdDes,
		Long:  migrateCmdDes,
	}
	cmd.AddCommand(migrateSingleCmd(), migrateMultiCmd())
	return cmd
}

func migrateSingleCmd() *cobra.Command {
	var (
		sel  selection
		from string
		to   string
	)
	cmd := &cobra.Command{
		Use:   "single",
		Short: "Migrates one wallet in one transaction, confirming before signing.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if !sel.yes && !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("stdin is not a terminal: pass --yes to sign without confirmation")
			}

			owner, err := solanago.PublicKeyFromBase58(from)
			if err != nil {
				return fmt.Errorf("--from is not a valid address: %w", err)
			}
			tokens, err := a.selectedHoldings(cmd, owner, sel, true)
			if err != nil {
				return err
			}

			sess, err := a.unlockSession()
			if err != nil {
				return err
			}
			defer sess.Lock()
			password, err := sess.Password()
			if err != nil {
				return err
			}
			defer clear(password)

			var wrap solana.SignerWrapper
			if !sel.yes {
				wrap = confirmWith(cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			result, err := a.service.MigrateSingle(cmd.Context(), model.MigrationRequest{
				SourceWallet:       from,
				DestinationAddress: to,
				SelectedTokens:     tokens,
				IncludeSol:         sel.includeSol,
				InviteCode:         sel.inviteCode,
			}, password, wrap)
			if err != nil {
				var simErr *migration.SimulationFailedError
				if errors.As(err, &simErr) {
					for _, line := range simErr.Logs {
						fmt.Fprintln(cmd.ErrOrStderr(), "  "+line)
					}
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tokens, signature %s\n", result.TokensTransferred, result.Signature)
			return nil
		}),
	}
	sel.bind(cmd)
	cmd.Flags().StringVar(&from, "from", "", "source wallet address")
	cmd.Flags().StringVar(&to, "to", "", "destination address")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func migrateMultiCmd() *cobra.Command {
	var (
		sel     selection
		wallets []string
		to      string
	)
	cmd := &cobra.Command{
		Use:   "multi",
		Short: "Migrates many wallets, one transaction each. Ctrl-C stops after the current wallet.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			stored, err := a.service.ListWallets(cmd.Context())
			if err != nil {
				return err
			}

			req := model.MultiWalletMigrationRequest{DestinationAddress: to, InviteCode: sel.inviteCode}
			for _, w := range stored {
				if len(wallets) > 0 && !slices.Contains(wallets, w.PublicKey) {
					continue
				}
				owner, err := solanago.PublicKeyFromBase58(w.PublicKey)
				if err != nil {
					return fmt.Errorf("stored wallet %s: %w", w.ID, err)
				}
				tokens, err := a.selectedHoldings(cmd, owner, sel, false)
				if err != nil {
					return err
				}
				req.Wallets = append(req.Wallets, model.WalletSelection{
					Address:        w.PublicKey,
					SelectedTokens: tokens,
					IncludeSol:     sel.includeSol,
				})
			}
			for _, addr := range wallets {
				if !slices.ContainsFunc(req.Wallets, func(w model.WalletSelection) bool { return w.Address == addr }) {
					// not stored: the batch reports it as a missing key
					req.Wallets = append(req.Wallets, model.WalletSelection{Address: addr, IncludeSol: sel.includeSol})
				}
			}

			out := cmd.OutOrStdout()
			for _, w := range req.Wallets {
				fmt.Fprintf(out, "%s: %d tokens, sol=%t\n", w.Address, len(w.SelectedTokens), w.IncludeSol)
			}
			if !sel.yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Migrate %d wallets to %s?", len(req.Wallets), to))
				if err != nil {
					return err
				}
				if !ok {
					return migration.ErrUserRejected
				}
			}

			sess, err := a.unlockSession()
			if err != nil {
				return err
			}
			defer sess.Lock()
			password, err := sess.Password()
			if err != nil {
				return err
			}
			defer clear(password)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := a.service.MigrateMulti(ctx, req, password, printProgress(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			printBatch(out, result)
			return result.Err()
		}),
	}
	sel.bind(cmd)
	cmd.Flags().StringSliceVar(&wallets, "wallet", nil, "source wallet address (repeatable, default every stored wallet)")
	cmd.Flags().StringVar(&to, "to", "", "destination address")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// selectedHoldings reads owner's token holdings when any token is requested
// and narrows them to the selection.
func (a *app) selectedHoldings(cmd *cobra.Command, owner solanago.PublicKey, sel selection, strict bool) ([]model.TokenHolding, error) {
	if !sel.allTokens && len(sel.tokens) == 0 {
		return nil, nil
	}
	holdings, err := a.ledger.GetTokenHoldings(cmd.Context(), owner)
	if err != nil {
		return nil, err
	}
	return selectTokens(holdings, sel.tokens, sel.allTokens, strict)
}

// selectTokens picks holdings by mint. With strict set a requested mint the
// wallet does not hold is an error, otherwise it is skipped.
func selectTokens(holdings []model.TokenHolding, mints []string, all, strict bool) ([]model.TokenHolding, error) {
	if all {
		return holdings, nil
	}
	out := make([]model.TokenHolding, 0, len(mints))
	for _, mint := range mints {
		i := slices.IndexFunc(holdings, func(h model.TokenHolding) bool { return h.Mint == mint })
		if i < 0 {
			if strict {
				return nil, fmt.Errorf("wallet holds no %s", mint)
			}
			continue
		}
		out = append(out, holdings[i])
	}
	return out, nil
}

func printProgress(w io.Writer) migration.ProgressFunc {
	return func(current, total int, status string) {
		fmt.Fprintf(w, "[%d/%d] %s\n", current, total, status)
	}
}

func printBatch(w io.Writer, result *migration.MultiWalletMigrationResult) {
	fmt.Fprintf(w, "%d of %d wallets migrated, %d failed\n",
		result.SuccessfulWallets, result.TotalWallets, result.FailedWallets)
	for _, sig := range result.Signatures {
		fmt.Fprintf(w, "  ok   %s\n", sig)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  fail %s: %s\n", e.Wallet, e.Error)
	}
}
