// Package workflow orchestrates the two-phase currency exchange: a liveness
// probe, then the conversion itself. The probe exists to give an expired
// session a clear, attributable error if the gateway's forced sign-out has
// not fired yet by the time the user submits.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fttech/exchange-client/internal/exchange/api"
	"github.com/fttech/exchange-client/internal/exchange/money"
)

// ExchangeAPI is the slice of the gateway the workflow needs.
type ExchangeAPI interface {
	CheckAuth(ctx context.Context) error
	ProcessExchange(ctx context.Context, req api.ExchangeRequest) (*api.ExchangeOutcome, error)
}

// Form carries the user's raw input. Amount stays a string until the numeric
// policy has accepted it.
type Form struct {
	FromCurrency    string
	ToCurrency      string
	Amount          string
	TransactionType string
}

type Exchanger struct {
	api ExchangeAPI
	log zerolog.Logger
}

func NewExchanger(exchangeAPI ExchangeAPI, log zerolog.Logger) *Exchanger {
	return &Exchanger{
		api: exchangeAPI,
		log: log.With().Str("component", "exchange_workflow").Logger(),
	}
}

// Execute validates the form, probes the session and submits the conversion.
// Only a probe success lets the conversion go out.
func (e *Exchanger) Execute(ctx context.Context, form Form) (*api.ExchangeOutcome, error) {
	amount, err := money.ParseAmount(form.Amount)
	if err != nil {
		return nil, err
	}

	e.log.Debug().Msg("Running pre-exchange auth check")
	if err := e.api.CheckAuth(ctx); err != nil {
		return nil, attributeError(err)
	}

	outcome, err := e.api.ProcessExchange(ctx, api.ExchangeRequest{
		FromCurrency:    form.FromCurrency,
		ToCurrency:      form.ToCurrency,
		Amount:          amount,
		TransactionType: form.TransactionType,
	})
	if err != nil {
		return nil, attributeError(err)
	}
	return outcome, nil
}

// attributeError names the phase that failed by the endpoint that produced
// the error, so the user sees "authentication check failed" and "exchange
// failed" as different situations.
func attributeError(err error) error {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("operation failed: %w", err)
	}

	switch apiErr.Endpoint {
	case api.EndpointCheck:
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("authentication check failed before exchange: unauthorized (401), please login again")
		}
		return fmt.Errorf("authentication check failed before exchange: %s", apiErr.Message)
	case api.EndpointExchange:
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("exchange failed: unauthorized (401)")
		}
		return fmt.Errorf("exchange failed: %s", apiErr.Message)
	default:
		return fmt.Errorf("operation failed: %s", apiErr.Message)
	}
}
