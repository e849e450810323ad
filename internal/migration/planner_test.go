package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFee = 1_000_000 // 0.001 SOL

func newTestPlanner(ledger *fakeLedger) *Planner {
	return NewPlanner(ledger, newAddress(), 50_000)
}

func TestEstimateInstructions(t *testing.T) {
	tests := []struct {
		name       string
		tokens     int
		includeSol bool
		feeExempt  bool
		want       int
		wantMax    int
	}{
		{name: "tokens_only", tokens: 3, want: 9, wantMax: 8},
		{name: "tokens_and_sol", tokens: 3, includeSol: true, want: 10, wantMax: 8},
		{name: "exempt", tokens: 3, feeExempt: true, want: 8, wantMax: 9},
		{name: "sol_only_exempt", includeSol: true, feeExempt: true, want: 3, wantMax: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateInstructions(tt.tokens, tt.includeSol, tt.feeExempt))
			maxTokens := MaxSelectableTokens(tt.includeSol, tt.feeExempt)
			assert.Equal(t, tt.wantMax, maxTokens)
			assert.LessOrEqual(t, EstimateInstructions(maxTokens, tt.includeSol, tt.feeExempt), MaxInstructions)
			assert.Greater(t, EstimateInstructions(maxTokens+1, tt.includeSol, tt.feeExempt), MaxInstructions)
		})
	}
}

func TestPlanner_AllDestinationAccountsExist(t *testing.T) {
	ledger := newFakeLedger()
	owner, dest := newAddress(), newAddress()

	plan, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
		Owner:       owner,
		Destination: dest,
		Tokens:      holdings(3),
		FeeLamports: testFee,
	})
	require.NoError(t, err)

	assert.Len(t, plan.Instructions, 6)
	assert.Equal(t, []StepKind{
		StepComputeUnitLimit,
		StepComputeUnitPrice,
		StepTokenTransfer,
		StepTokenTransfer,
		StepTokenTransfer,
		StepServiceFee,
	}, stepKinds(plan))
	assert.Equal(t, 3, plan.TokensTransferred)
	assert.Equal(t, uint32(550_000), plan.ComputeUnits)
	assert.Equal(t, uint64(50_000), plan.PriorityFee)
	assert.Equal(t, uint64(1_500_000), plan.Steps[2].Amount)
	assert.Equal(t, uint64(testFee), plan.Steps[5].Amount)
	assert.Equal(t, 3, ledger.count("AccountExists"))
}

func TestPlanner_CreatesMissingDestinationAccount(t *testing.T) {
	ledger := newFakeLedger()
	owner, dest := newAddress(), newAddress()
	tokens := holdings(2)

	mint := solana.MustPublicKeyFromBase58(tokens[1].Mint)
	destATA, _, err := solana.FindAssociatedTokenAddress(dest, mint)
	require.NoError(t, err)
	ledger.missing[destATA] = true

	plan, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
		Owner:       owner,
		Destination: dest,
		Tokens:      tokens,
		FeeLamports: testFee,
	})
	require.NoError(t, err)

	assert.Equal(t, []StepKind{
		StepComputeUnitLimit,
		StepComputeUnitPrice,
		StepTokenTransfer,
		StepCreateTokenAccount,
		StepTokenTransfer,
		StepServiceFee,
	}, stepKinds(plan))
	assert.Equal(t, mint.String(), plan.Steps[3].Mint)

	create := plan.Instructions[3]
	assert.True(t, create.ProgramID().Equals(solana.SPLAssociatedTokenAccountProgramID))
	accounts := create.Accounts()
	require.NotEmpty(t, accounts)
	assert.True(t, accounts[0].PublicKey.Equals(owner), "source wallet pays for the account")
}

func TestPlanner_TooLargeMakesNoNetworkCalls(t *testing.T) {
	ledger := newFakeLedger()

	_, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
		Owner:       newAddress(),
		Destination: newAddress(),
		Tokens:      holdings(9),
		IncludeSol:  true,
		FeeLamports: testFee,
	})

	var tooLarge *PlanTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, 22, tooLarge.Instructions)
	assert.Equal(t, MaxInstructions, tooLarge.Limit)
	assert.Equal(t, 8, tooLarge.MaxTokens)
	assert.Zero(t, ledger.networkCalls())
}

func TestPlanner_NothingSelected(t *testing.T) {
	ledger := newFakeLedger()

	_, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
		Owner:       newAddress(),
		Destination: newAddress(),
		FeeLamports: testFee,
	})
	assert.ErrorIs(t, err, ErrNothingToMigrate)
	assert.Zero(t, ledger.count("AccountExists"))
}

func TestPlanner_SOLReserve(t *testing.T) {
	tests := []struct {
		name      string
		balance   uint64
		tokens    int
		wantErr   error
		wantSOL   uint64
		wantKinds []StepKind
	}{
		{
			name:    "balance_equal_to_reserve_only_sol",
			balance: SOLReserveLamports,
			wantErr: ErrNothingToMigrate,
		},
		{
			name:    "balance_below_reserve_only_sol",
			balance: 1_000,
			wantErr: ErrNothingToMigrate,
		},
		{
			name:    "balance_equal_to_reserve_with_token",
			balance: SOLReserveLamports,
			tokens:  1,
			wantKinds: []StepKind{
				StepComputeUnitLimit, StepComputeUnitPrice, StepTokenTransfer, StepServiceFee,
			},
		},
		{
			name:    "remainder_transferred",
			balance: 1_250_000_000,
			wantSOL: 1_240_000_000,
			wantKinds: []StepKind{
				StepComputeUnitLimit, StepComputeUnitPrice, StepSOLTransfer, StepServiceFee,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newTestPlanner(newFakeLedger()).Plan(context.Background(), PlanInput{
				Owner:       newAddress(),
				Destination: newAddress(),
				Tokens:      holdings(tt.tokens),
				IncludeSol:  true,
				SOLBalance:  tt.balance,
				FeeLamports: testFee,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKinds, stepKinds(plan))
			assert.Equal(t, tt.wantSOL, plan.SOLLamports)
			for _, s := range plan.Steps {
				if s.Kind == StepSOLTransfer {
					assert.NotZero(t, s.Amount)
				}
			}
		})
	}
}

func TestPlanner_SkipsDust(t *testing.T) {
	ledger := newFakeLedger()
	dust := model.TokenHolding{Mint: newAddress().String(), UIAmount: "0.0000001", Decimals: 6}

	_, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
		Owner:       newAddress(),
		Destination: newAddress(),
		Tokens:      []model.TokenHolding{dust},
		FeeLamports: testFee,
	})
	assert.ErrorIs(t, err, ErrNothingToMigrate)
	assert.Zero(t, ledger.count("AccountExists"))

	tokens := append(holdings(1), dust)
	plan, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
		Owner:       newAddress(),
		Destination: newAddress(),
		Tokens:      tokens,
		FeeLamports: testFee,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.TokensTransferred)
	assert.Equal(t, 4, len(plan.Instructions))
}

func TestPlanner_FeeExemptionRemovesOneInstruction(t *testing.T) {
	in := PlanInput{
		Owner:       newAddress(),
		Destination: newAddress(),
		Tokens:      holdings(4),
		IncludeSol:  true,
		SOLBalance:  2 * SOLReserveLamports,
		FeeLamports: testFee,
	}
	planner := newTestPlanner(newFakeLedger())

	charged, err := planner.Plan(context.Background(), in)
	require.NoError(t, err)

	in.FeeExempt = true
	exempt, err := planner.Plan(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, len(charged.Instructions)-1, len(exempt.Instructions))
	assert.NotContains(t, stepKinds(exempt), StepServiceFee)
}

func TestPlanner_RejectsBadSelection(t *testing.T) {
	mint := newAddress().String()

	tests := []struct {
		name   string
		tokens []model.TokenHolding
		field  string
	}{
		{
			name:   "invalid_mint",
			tokens: []model.TokenHolding{{Mint: "not-a-mint", UIAmount: "1", Decimals: 6}},
			field:  "mint",
		},
		{
			name: "duplicate_mint",
			tokens: []model.TokenHolding{
				{Mint: mint, UIAmount: "1", Decimals: 6},
				{Mint: mint, UIAmount: "2", Decimals: 6},
			},
			field: "mint",
		},
		{
			name:   "negative_amount",
			tokens: []model.TokenHolding{{Mint: mint, UIAmount: "-1", Decimals: 6}},
			field:  "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			_, err := newTestPlanner(ledger).Plan(context.Background(), PlanInput{
				Owner:       newAddress(),
				Destination: newAddress(),
				Tokens:      tt.tokens,
				FeeLamports: testFee,
			})
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, ledger.networkCalls())
		})
	}
}
