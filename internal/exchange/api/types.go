package api

// Request and response shapes for the exchange service's JSON API.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username string `json:"username"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
}

// WalletAccount is a read-only balance snapshot. Balances are never adjusted
// locally; after any mutation the wallet is re-fetched from the server.
type WalletAccount struct {
	AccountID    int     `json:"accountId"`
	CurrencyType string  `json:"currencyType"`
	Balance      float64 `json:"balance"`
}

// MutationRequest is the payload for deposits and withdrawals. Unlike
// exchange requests it carries the username explicitly.
type MutationRequest struct {
	Username        string  `json:"username"`
	CurrencyType    string  `json:"currencyType"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	TransactionType string  `json:"transactionType"`
}

type Transaction struct {
	TransactionID   int     `json:"transactionId"`
	AccountID       int     `json:"accountId"`
	CurrencyType    string  `json:"currencyType"`
	Timestamp       string  `json:"timestamp"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	TransactionType string  `json:"transactionType"`
}

// ExchangeRequest deliberately omits the username; the server attaches the
// identity from the trusted session cookie so a tampered client cannot
// submit a conversion on behalf of another user.
type ExchangeRequest struct {
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transactionType"`
}

const (
	ExchangeStatusSuccess = "SUCCESS"
	ExchangeStatusFailed  = "FAILED"
)

type ExchangeOutcome struct {
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	ExecutedPrice float64 `json:"executedPrice,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty"`
	FromAmount    float64 `json:"fromAmount,omitempty"`
	FromCurrency  string  `json:"fromCurrency,omitempty"`
	ToAmount      float64 `json:"toAmount,omitempty"`
	ToCurrency    string  `json:"toCurrency,omitempty"`
}
