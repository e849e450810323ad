package migration

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-consolidator/internal/common"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

const (
	// MaxInstructions caps a migration transaction.
	MaxInstructions = 20

	computeBudgetInstructions = 2
	instructionsPerToken      = 2 // possible create + transfer

	BaseComputeUnits     = 400_000
	ComputeUnitsPerToken = 50_000

	// SOLReserveLamports stays in the source wallet when SOL is migrated (0.01 SOL).
	SOLReserveLamports = 10_000_000
)

// AccountLookup answers whether an account is allocated on chain.
type AccountLookup interface {
	AccountExists(ctx context.Context, address solana.PublicKey) (bool, error)
}

// StepKind tags each planned instruction.
type StepKind int

const (
	StepComputeUnitLimit StepKind = iota
	StepComputeUnitPrice
	StepCreateTokenAccount
	StepTokenTransfer
	StepSOLTransfer
	StepServiceFee
)

func (k StepKind) String() string {
	switch k {
	case StepComputeUnitLimit:
		return "compute-unit-limit"
	case StepComputeUnitPrice:
		return "compute-unit-price"
	case StepCreateTokenAccount:
		return "create-token-account"
	case StepTokenTransfer:
		return "token-transfer"
	case StepSOLTransfer:
		return "sol-transfer"
	case StepServiceFee:
		return "service-fee"
	default:
		return fmt.Sprintf("step(%d)", int(k))
	}
}

// substantive reports whether the step moves the owner's assets.
func (k StepKind) substantive() bool {
	return k == StepTokenTransfer || k == StepSOLTransfer
}

// Step describes one planned instruction. Mint is empty for SOL steps and
// Amount is in base units of the step's asset.
type Step struct {
	Kind   StepKind
	Mint   string
	Amount uint64
}

// PlanInput is everything the planner needs for one wallet.
type PlanInput struct {
	Owner       solana.PublicKey
	Destination solana.PublicKey
	Tokens      []model.TokenHolding
	IncludeSol  bool
	SOLBalance  uint64 // lamports, read only when IncludeSol is set
	FeeExempt   bool
	FeeLamports uint64 // fee tier of the calling flow
}

// Plan is an ordered, size-bounded instruction list for one transaction.
type Plan struct {
	Instructions      []solana.Instruction
	Steps             []Step
	ComputeUnits      uint32
	PriorityFee       uint64 // micro-lamports per compute unit
	TokensTransferred int
	SOLLamports       uint64
}

// Planner builds migration plans.
type Planner struct {
	accounts     AccountLookup
	feeRecipient solana.PublicKey
	priorityFee  uint64
}

// NewPlanner creates a planner that sends service fees to feeRecipient and
// prices compute at priorityFee micro-lamports per unit.
func NewPlanner(accounts AccountLookup, feeRecipient solana.PublicKey, priorityFee uint64) *Planner {
	return &Planner{
		accounts:     accounts,
		feeRecipient: feeRecipient,
		priorityFee:  priorityFee,
	}
}

// EstimateInstructions is the worst-case instruction count of a selection.
func EstimateInstructions(tokenCount int, includeSol, feeExempt bool) int {
	n := computeBudgetInstructions + tokenCount*instructionsPerToken
	if includeSol {
		n++
	}
	if !feeExempt {
		n++
	}
	return n
}

// MaxSelectableTokens is the largest token count whose estimate fits MaxInstructions.
func MaxSelectableTokens(includeSol, feeExempt bool) int {
	free := MaxInstructions - EstimateInstructions(0, includeSol, feeExempt)
	if free < 0 {
		return 0
	}
	return free / instructionsPerToken
}

// ComputeUnitsFor sizes the compute budget for tokenCount token transfers.
func ComputeUnitsFor(tokenCount int) uint32 {
	return uint32(BaseComputeUnits + ComputeUnitsPerToken*tokenCount)
}

type plannedToken struct {
	mint     solana.PublicKey
	decimals uint8
	amount   uint64
}

// Plan builds the instruction plan for in. Size and selection checks run
// before any account lookup.
func (p *Planner) Plan(ctx context.Context, in PlanInput) (*Plan, error) {
	if estimate := EstimateInstructions(len(in.Tokens), in.IncludeSol, in.FeeExempt); estimate > MaxInstructions {
		return nil, &PlanTooLargeError{
			Instructions: estimate,
			Limit:        MaxInstructions,
			MaxTokens:    MaxSelectableTokens(in.IncludeSol, in.FeeExempt),
		}
	}
	if len(in.Tokens) == 0 && !in.IncludeSol {
		return nil, ErrNothingToMigrate
	}

	tokens, err := parseSelection(in.Tokens)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ComputeUnits: ComputeUnitsFor(len(in.Tokens)),
		PriorityFee:  p.priorityFee,
	}
	plan.add(Step{Kind: StepComputeUnitLimit}, computebudget.NewSetComputeUnitLimitInstruction(plan.ComputeUnits).Build())
	plan.add(Step{Kind: StepComputeUnitPrice}, computebudget.NewSetComputeUnitPriceInstruction(plan.PriorityFee).Build())

	for _, t := range tokens {
		if t.amount == 0 {
			// dust that floors to zero base units
			continue
		}
		if err := p.planToken(ctx, plan, in, t); err != nil {
			return nil, err
		}
	}

	if in.IncludeSol && in.SOLBalance > SOLReserveLamports {
		plan.SOLLamports = in.SOLBalance - SOLReserveLamports
		plan.add(
			Step{Kind: StepSOLTransfer, Amount: plan.SOLLamports},
			system.NewTransferInstruction(plan.SOLLamports, in.Owner, in.Destination).Build(),
		)
	}

	if !plan.hasSubstantive() {
		return nil, ErrNothingToMigrate
	}

	if !in.FeeExempt {
		plan.add(
			Step{Kind: StepServiceFee, Amount: in.FeeLamports},
			system.NewTransferInstruction(in.FeeLamports, in.Owner, p.feeRecipient).Build(),
		)
	}
	return plan, nil
}

func (p *Planner) planToken(ctx context.Context, plan *Plan, in PlanInput, t plannedToken) error {
	sourceATA, _, err := solana.FindAssociatedTokenAddress(in.Owner, t.mint)
	if err != nil {
		return fmt.Errorf("failed to derive source token account for %s: %w", t.mint, err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(in.Destination, t.mint)
	if err != nil {
		return fmt.Errorf("failed to derive destination token account for %s: %w", t.mint, err)
	}

	exists, err := p.accounts.AccountExists(ctx, destATA)
	if err != nil {
		return fmt.Errorf("failed to check destination token account for %s: %w", t.mint, err)
	}
	if !exists {
		plan.add(
			Step{Kind: StepCreateTokenAccount, Mint: t.mint.String()},
			associatedtokenaccount.NewCreateInstruction(in.Owner, in.Destination, t.mint).Build(),
		)
	}

	plan.add(
		Step{Kind: StepTokenTransfer, Mint: t.mint.String(), Amount: t.amount},
		token.NewTransferCheckedInstruction(
			t.amount,
			t.decimals,
			sourceATA,
			t.mint,
			destATA,
			in.Owner,
			[]solana.PublicKey{},
		).Build(),
	)
	plan.TokensTransferred++
	return nil
}

func (p *Plan) add(step Step, inst solana.Instruction) {
	p.Steps = append(p.Steps, step)
	p.Instructions = append(p.Instructions, inst)
}

func (p *Plan) hasSubstantive() bool {
	for _, s := range p.Steps {
		if s.Kind.substantive() {
			return true
		}
	}
	return false
}

// parseSelection validates mints and converts UI amounts to base units.
func parseSelection(holdings []model.TokenHolding) ([]plannedToken, error) {
	seen := make(map[solana.PublicKey]struct{}, len(holdings))
	out := make([]plannedToken, 0, len(holdings))
	for _, h := range holdings {
		mint, err := solana.PublicKeyFromBase58(h.Mint)
		if err != nil {
			return nil, &ValidationError{Field: "mint", Reason: fmt.Sprintf("%q is not a valid address", h.Mint)}
		}
		if _, dup := seen[mint]; dup {
			return nil, &ValidationError{Field: "mint", Reason: fmt.Sprintf("%s selected more than once", mint)}
		}
		seen[mint] = struct{}{}

		amount, err := common.UIAmountToRaw(h.UIAmount, h.Decimals)
		if err != nil {
			return nil, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%s: %v", mint, err)}
		}
		out = append(out, plannedToken{mint: mint, decimals: h.Decimals, amount: amount})
	}
	return out, nil
}
