// Package account manages the wallet snapshot and the deposit/withdraw
// operations against it.
package account

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fttech/exchange-client/internal/exchange/api"
	"github.com/fttech/exchange-client/internal/exchange/money"
)

const (
	TypeDeposit  = "deposit"
	TypeWithdraw = "withdraw"
)

// AccountAPI is the slice of the gateway the service needs.
type AccountAPI interface {
	Wallet(ctx context.Context) ([]api.WalletAccount, error)
	Deposit(ctx context.Context, req api.MutationRequest) error
	Withdraw(ctx context.Context, req api.MutationRequest) error
}

type Service struct {
	api AccountAPI
	log zerolog.Logger

	mu     sync.Mutex
	wallet []api.WalletAccount
}

func NewService(accountAPI AccountAPI, log zerolog.Logger) *Service {
	return &Service{
		api: accountAPI,
		log: log.With().Str("component", "account_service").Logger(),
	}
}

// Refresh fetches the authoritative wallet snapshot. Balances are never
// patched locally with deltas; the server's numbers always win.
func (s *Service) Refresh(ctx context.Context) ([]api.WalletAccount, error) {
	wallet, err := s.api.Wallet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet data: %w", err)
	}

	s.mu.Lock()
	s.wallet = wallet
	s.mu.Unlock()
	return wallet, nil
}

// Balance returns the last fetched balance for a currency type. The second
// return value reports whether the wallet holds that currency at all.
func (s *Service) Balance(currencyType string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.wallet {
		if acc.CurrencyType == currencyType {
			return acc.Balance, true
		}
	}
	return 0, false
}

// Deposit validates the amount locally, submits the deposit and re-fetches
// the wallet.
func (s *Service) Deposit(ctx context.Context, username, currencyType, amountText string) error {
	amount, err := money.ParseAmount(amountText)
	if err != nil {
		return err
	}
	return s.submit(ctx, username, currencyType, amount, TypeDeposit)
}

// Withdraw additionally checks the requested amount against the last known
// balance before anything touches the network. This is an optimistic guard:
// the snapshot may be stale, and the server's own check remains
// authoritative either way.
func (s *Service) Withdraw(ctx context.Context, username, currencyType, amountText string) error {
	amount, err := money.ParseAmount(amountText)
	if err != nil {
		return err
	}

	balance, ok := s.Balance(currencyType)
	if !ok || amount > balance {
		return fmt.Errorf("insufficient balance. Your current balance is %s",
			money.Format(balance, currencyType))
	}
	return s.submit(ctx, username, currencyType, amount, TypeWithdraw)
}

func (s *Service) submit(ctx context.Context, username, currencyType string, amount float64, txnType string) error {
	req := api.MutationRequest{
		Username:        username,
		CurrencyType:    currencyType,
		Amount:          amount,
		Description:     fmt.Sprintf("%s operation for %s", txnType, username),
		TransactionType: txnType,
	}

	var err error
	if txnType == TypeWithdraw {
		err = s.api.Withdraw(ctx, req)
	} else {
		err = s.api.Deposit(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %s", txnType, serverMessage(err))
	}

	s.log.Debug().Str("type", txnType).Str("currency", currencyType).Float64("amount", amount).Msg("Mutation accepted, refreshing wallet")
	if _, err := s.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

func serverMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
