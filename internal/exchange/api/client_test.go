package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AttachesProgrammaticHeaders(t *testing.T) {
	var gotRequestedWith, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestedWith = r.Header.Get("X-Requested-With")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	require.NoError(t, client.CheckAuth(context.Background()))
	assert.Equal(t, "XMLHttpRequest", gotRequestedWith)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_CarriesSessionCookie(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc(EndpointLogin, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "opaque-value", Path: "/"})
		_, _ = w.Write([]byte(`{"username":"alice"}`))
	})
	mux.HandleFunc(EndpointCheck, func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("SESSION"); err == nil && c.Value == "opaque-value" {
			sawCookie = true
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.Login(ctx, LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)

	require.NoError(t, client.CheckAuth(ctx))
	assert.True(t, sawCookie, "session cookie must ride along automatically")
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{
			name:        "message field",
			status:      http.StatusBadRequest,
			body:        `{"message":"Invalid credentials"}`,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "error field fallback",
			status:      http.StatusConflict,
			body:        `{"error":"Username already taken"}`,
			wantMessage: "Username already taken",
		},
		{
			name:        "unauthorized wraps sentinel",
			status:      http.StatusUnauthorized,
			body:        `{"message":"Unauthorized"}`,
			wantMessage: "Unauthorized",
			wantIs:      ErrUnauthorized,
		},
		{
			name:        "service unavailable wraps sentinel",
			status:      http.StatusServiceUnavailable,
			body:        `{}`,
			wantMessage: "request failed",
			wantIs:      ErrServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, err := NewClient(srv.URL)
			require.NoError(t, err)

			err = client.CheckAuth(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, EndpointCheck, apiErr.Endpoint)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.wantMessage, apiErr.Message)
			if tc.wantIs != nil {
				assert.ErrorIs(t, err, tc.wantIs)
			}
		})
	}
}

func TestClient_TransactionsFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Transactions(ctx, "USD")
	require.NoError(t, err)
	assert.Equal(t, "currencyType=USD", gotQuery)

	_, err = client.Transactions(ctx, "ALL")
	require.NoError(t, err)
	assert.Empty(t, gotQuery, "ALL means no filter parameter")

	_, err = client.Transactions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestClient_UndecodableSuccessIsShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Wallet(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestClient_TransportErrorKeepsEndpoint(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	err = client.CheckAuth(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, EndpointCheck, apiErr.Endpoint)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
