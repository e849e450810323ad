package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/solana"

	solanago "github.com/gagliardetto/solana-go"
)

var programNames = map[solanago.PublicKey]string{
	solanago.ComputeBudget:                      "compute budget",
	solanago.SystemProgramID:                    "system transfer",
	solanago.TokenProgramID:                     "token transfer",
	solanago.SPLAssociatedTokenAccountProgramID: "create token account",
}

// confirm asks a yes/no question on out and reads the answer from in.
// Anything other than y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// confirmingSigner shows the transaction and asks before delegating to next.
type confirmingSigner struct {
	next migration.Signer
	in   io.Reader
	out  io.Writer
}

func confirmWith(in io.Reader, out io.Writer) solana.SignerWrapper {
	return func(next migration.Signer) migration.Signer {
		return &confirmingSigner{next: next, in: in, out: out}
	}
}

func (s *confirmingSigner) PublicKey() solanago.PublicKey {
	return s.next.PublicKey()
}

func (s *confirmingSigner) SignTransaction(ctx context.Context, tx *solanago.Transaction) error {
	describeTransaction(s.out, tx)

	ok, err := confirm(s.in, s.out, "Sign and send?")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		return fmt.Errorf("declined at prompt: %w", migration.ErrUserRejected)
	}
	return s.next.SignTransaction(ctx, tx)
}

func describeTransaction(w io.Writer, tx *solanago.Transaction) {
	fmt.Fprintf(w, "\nTransaction signed by %s\n", tx.Message.AccountKeys[0])
	for i, inst := range tx.Message.Instructions {
		name := "unknown program"
		if program, err := tx.Message.Program(inst.ProgramIDIndex); err == nil {
			if known, ok := programNames[program]; ok {
				name = known
			} else {
				name = program.String()
			}
		}
		fmt.Fprintf(w, "  %2d. %s\n", i+1, name)
	}
}
