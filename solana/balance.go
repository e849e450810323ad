package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-consolidator/internal/common"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"

	"github.com/gagliardetto/solana-go"
)

// GetBalances gets SOL and token balances of a stored wallet
func (s *Service) GetBalances(ctx context.Context, id string) (*model.BalanceResponse, error) {
	record, err := store.Find(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	owner, err := solana.PublicKeyFromBase58(record.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid stored address %q: %w", record.PublicKey, err)
	}

	lamports, err := s.balances.GetBalance(ctx, owner)
	if err != nil {
		return nil, err
	}

	tokens, err := s.balances.GetTokenHoldings(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &model.BalanceResponse{
		Address: record.PublicKey,
		SOL:     common.LamportsToSOL(lamports),
		Tokens:  tokens,
	}, nil
}
