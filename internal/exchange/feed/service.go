package feed

import (
	"context"
	"fmt"

	"github.com/fttech/exchange-client/internal/exchange/api"
)

// FeedAPI is the slice of the gateway the feed needs.
type FeedAPI interface {
	Transactions(ctx context.Context, currencyType string) ([]api.Transaction, error)
}

type Service struct {
	api FeedAPI
}

func NewService(feedAPI FeedAPI) *Service {
	return &Service{api: feedAPI}
}

// Fetch retrieves the raw feed for a currency filter ("" or "ALL" for no
// filter) and classifies it before anything displays it.
func (s *Service) Fetch(ctx context.Context, currencyType string) ([]ClassifiedTransaction, error) {
	txns, err := s.api.Transactions(ctx, currencyType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return Classify(txns), nil
}
