package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fttech/exchange-client/internal/exchange/identity"
)

func unauthorizedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPolicy_ForcedSignOutOnProtectedLocation(t *testing.T) {
	srv := unauthorizedServer(t)

	cache := identity.NewMemory()
	cache.Set("alice")
	var reasons []string

	client, err := NewClient(srv.URL,
		WithIdentityCache(cache),
		WithLocationFunc(func() string { return "/account" }),
		WithSignOutHandler(func(reason string) { reasons = append(reasons, reason) }),
	)
	require.NoError(t, err)

	err = client.CheckAuth(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized, "the caller still gets the error, even though the sign-out already fired")

	_, ok := cache.Get()
	assert.False(t, ok, "identity cache must be cleared")
	assert.Len(t, reasons, 1, "exactly one forced sign-out event")
}

func TestPolicy_PublicLocationsAreLeftAlone(t *testing.T) {
	for _, location := range []string{"/", "/login", "/register"} {
		srv := unauthorizedServer(t)

		cache := identity.NewMemory()
		cache.Set("alice")
		signedOut := false

		client, err := NewClient(srv.URL,
			WithIdentityCache(cache),
			WithLocationFunc(func() string { return location }),
			WithSignOutHandler(func(string) { signedOut = true }),
		)
		require.NoError(t, err)

		err = client.CheckAuth(context.Background())
		require.ErrorIs(t, err, ErrUnauthorized)

		cached, ok := cache.Get()
		assert.True(t, ok, "location %s: cache must survive", location)
		assert.Equal(t, "alice", cached)
		assert.False(t, signedOut, "location %s: no forced sign-out", location)
	}
}

func TestPolicy_IgnoresNonAuthFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	cache := identity.NewMemory()
	cache.Set("alice")
	signedOut := false

	client, err := NewClient(srv.URL,
		WithIdentityCache(cache),
		WithLocationFunc(func() string { return "/account" }),
		WithSignOutHandler(func(string) { signedOut = true }),
	)
	require.NoError(t, err)

	err = client.CheckAuth(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, ok := cache.Get()
	assert.True(t, ok)
	assert.False(t, signedOut)
}

// The policy applies identically no matter which component issued the call.
func TestPolicy_AppliesToEveryEndpoint(t *testing.T) {
	srv := unauthorizedServer(t)

	cache := identity.NewMemory()
	signOuts := 0
	client, err := NewClient(srv.URL,
		WithIdentityCache(cache),
		WithLocationFunc(func() string { return "/transactions" }),
		WithSignOutHandler(func(string) { signOuts++ }),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = client.Wallet(ctx)
	_, _ = client.Transactions(ctx, "USD")
	_, _ = client.ProcessExchange(ctx, ExchangeRequest{FromCurrency: "USD", ToCurrency: "TRY", Amount: 1, TransactionType: "exchange"})

	assert.Equal(t, 3, signOuts)
}
