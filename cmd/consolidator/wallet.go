package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/AlexZinkM/wallet-consolidator/internal/config"

	"github.com/spf13/cobra"
)

const (
	walletFuncName = "wallet"
	walletCmdDes   = "Manage vault wallets: generate, import, list, rename, delete, export, restore, passwd."
)

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   walletFuncName,
		Short: walletCmdDes,
		Long:  walletCmdDes,
	}
	cmd.AddCommand(
		walletGenerateCmd(),
		walletImportCmd(),
		walletListCmd(),
		walletRenameCmd(),
		walletDeleteCmd(),
		walletExportCmd(),
		walletRestoreCmd(),
		walletPasswdCmd(),
	)
	return cmd
}

// withApp builds the app for one command run and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func walletGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <name>",
		Short: "Generates a new wallet and stores it encrypted.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
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

			record, _, err := a.service.GenerateWallet(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", record.ID, record.Name, record.PublicKey)
			return nil
		}),
	}
}

func walletImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <name>",
		Short: "Imports a base58 secret key (prompted, hidden).",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			secret, err := config.PromptForPassword("Secret key (base58): ")
			if err != nil {
				return err
			}
			defer clear(secret)

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

			record, err := a.service.ImportWallet(cmd.Context(), args[0], secret, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", record.ID, record.Name, record.PublicKey)
			return nil
		}),
	}
}

func walletListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists stored wallets.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			wallets, err := a.service.ListWallets(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tADDRESS\tCREATED")
			for _, w := range wallets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.ID, w.Name, w.PublicKey, w.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		}),
	}
}

func walletRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Renames a wallet.",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			summary, err := a.service.RenameWallet(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", summary.ID, summary.Name, summary.PublicKey)
			return nil
		}),
	}
}

func walletDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently deletes a wallet and its encrypted key.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Delete wallet %s? Funds are lost without a backup.", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("aborted")
				}
			}
			return a.service.DeleteWallet(cmd.Context(), args[0])
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func walletExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <id> <file>",
		Short: "Writes a password protected .cwt backup of one wallet.",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
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

			exportPassword, err := promptNewPassword("Backup password")
			if err != nil {
				return err
			}
			defer clear(exportPassword)

			if err := a.service.ExportBackup(cmd.Context(), args[0], args[1], password, exportPassword); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", args[1])
			return nil
		}),
	}
}

func walletRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file> <name>",
		Short: "Imports a wallet from a .cwt backup.",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			exportPassword, err := config.PromptForPassword("Backup password: ")
			if err != nil {
				return err
			}
			defer clear(exportPassword)

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

			record, err := a.service.ImportBackup(cmd.Context(), args[0], exportPassword, password, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", record.ID, record.Name, record.PublicKey)
			return nil
		}),
	}
}

func walletPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Re-encrypts every wallet under a new master password.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			oldPassword, err := config.PromptForPassword("Current master password: ")
			if err != nil {
				return err
			}
			defer clear(oldPassword)

			newPassword, err := promptNewPassword("New master password")
			if err != nil {
				return err
			}
			defer clear(newPassword)

			n, err := a.service.ChangePassword(cmd.Context(), oldPassword, newPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "re-encrypted %d wallets\n", n)
			return nil
		}),
	}
}
