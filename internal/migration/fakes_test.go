package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/AlexZinkM/wallet-consolidator/internal/client"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/gagliardetto/solana-go"
)

// fakeLedger is an in-memory LedgerClient. Accounts exist unless listed in missing.
type fakeLedger struct {
	mu sync.Mutex

	balances   map[solana.PublicKey]uint64
	missing    map[solana.PublicKey]bool
	simErr     error
	sendErr    map[solana.PublicKey]error // keyed by fee payer
	confirmErr error

	calls map[string]int
	sent  []*solana.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: map[solana.PublicKey]uint64{},
		missing:  map[solana.PublicKey]bool{},
		sendErr:  map[solana.PublicKey]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeLedger) inc(method string) {
	f.calls[method]++
}

func (f *fakeLedger) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeLedger) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeLedger) AccountExists(_ context.Context, address solana.PublicKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inc("AccountExists")
	return !f.missing[address], nil
}

func (f *fakeLedger) GetBalance(_ context.Context, owner solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inc("GetBalance")
	return f.balances[owner], nil
}

func (f *fakeLedger) GetLatestBlockhash(context.Context) (client.Blockhash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inc("GetLatestBlockhash")
	return client.Blockhash{Hash: solana.Hash{7}, LastValidBlockHeight: 1000}, nil
}

func (f *fakeLedger) SimulateTransaction(context.Context, *solana.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inc("SimulateTransaction")
	return f.simErr
}

func (f *fakeLedger) SendRawTransaction(_ context.Context, raw []byte) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inc("SendRawTransaction")

	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, err
	}
	if err := f.sendErr[tx.Message.AccountKeys[0]]; err != nil {
		return solana.Signature{}, err
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

func (f *fakeLedger) ConfirmTransaction(context.Context, solana.Signature, client.Blockhash) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inc("ConfirmTransaction")
	return f.confirmErr
}

type fakeOracle struct {
	exempt bool
	err    error
	calls  int
}

func (o *fakeOracle) IsExempt(context.Context, string, string) (bool, error) {
	o.calls++
	return o.exempt, o.err
}

// recordingSigner counts signing attempts and can decline.
type recordingSigner struct {
	*KeypairSigner
	reject bool
	calls  int
}

func (s *recordingSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	s.calls++
	if s.reject {
		return fmt.Errorf("declined at prompt: %w", ErrUserRejected)
	}
	return s.KeypairSigner.SignTransaction(ctx, tx)
}

func newKey() solana.PrivateKey {
	return solana.NewWallet().PrivateKey
}

func newAddress() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// holdings returns n tokens of 1.5 units with 6 decimals.
func holdings(n int) []model.TokenHolding {
	out := make([]model.TokenHolding, n)
	for i := range out {
		out[i] = model.TokenHolding{Mint: newAddress().String(), UIAmount: "1.5", Decimals: 6}
	}
	return out
}

func stepKinds(p *Plan) []StepKind {
	kinds := make([]StepKind, len(p.Steps))
	for i, s := range p.Steps {
		kinds[i] = s.Kind
	}
	return kinds
}

// splicedKey pairs the seed of seedOf with the public half of publicOf.
func splicedKey(seedOf, publicOf solana.PrivateKey) solana.PrivateKey {
	out := make(solana.PrivateKey, 0, 64)
	out = append(out, seedOf[:32]...)
	return append(out, publicOf[32:]...)
}
