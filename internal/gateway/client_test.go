// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alluz/alluz-web/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	ctx := WithToken(context.Background(), "tok-123")
	_, err := client.GetContent(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, UserAgent, got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(model.Lead{ID: "lead-1"})
	})

	lead, err := client.CreateLead(context.Background(), model.LeadDraft{Nome: "Ana"})
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.Equal(t, "lead-1", lead.ID)
}

func TestCustomTokenSource(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	t.Cleanup(srv.Close)

	client := New(Config{
		BaseURL: srv.URL,
		Token:   func(context.Context) string { return "service-token" },
	})

	_, err := client.GetContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-token", auth)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 maps to AuthError",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.True(t, IsAuth(err))
			},
		},
		{
			name:   "429 maps to RateLimitError",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.True(t, IsRateLimit(err))
			},
		},
		{
			name:   "404 maps to NotFoundError",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:   "409 maps to NotFoundError",
			status: http.StatusConflict,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:   "500 maps to TransportError",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var terr *TransportError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.ListPlans(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOnAuthRejectHookFires(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	fired := false
	client := New(Config{
		BaseURL:      srv.URL,
		OnAuthReject: func(context.Context) { fired = true },
	})

	_, err := client.Me(context.Background())
	require.True(t, IsAuth(err))
	assert.True(t, fired, "OnAuthReject must fire on 401")
}

func TestOnAuthRejectNotFiredOnOtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	fired := false
	client := New(Config{
		BaseURL:      srv.URL,
		OnAuthReject: func(context.Context) { fired = true },
	})

	_, err := client.CreateLead(context.Background(), model.LeadDraft{})
	require.True(t, IsRateLimit(err))
	assert.False(t, fired)
}

func TestListLeadsQueryEncoding(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]model.Lead{})
	})

	_, err := client.ListLeads(context.Background(), LeadQuery{
		Status:     "novo",
		DataInicio: "2026-08-01",
	})
	require.NoError(t, err)

	assert.Contains(t, rawQuery, "status=novo")
	assert.Contains(t, rawQuery, "data_inicio=2026-08-01")
	assert.NotContains(t, rawQuery, "plano")
	assert.NotContains(t, rawQuery, "data_fim")
}

func TestListLeadsOmitsQueryWhenEmpty(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.RequestURI()
		_ = json.NewEncoder(w).Encode([]model.Lead{})
	})

	_, err := client.ListLeads(context.Background(), LeadQuery{})
	require.NoError(t, err)
	assert.Equal(t, "/admin/leads", path)
}

func TestLoginParsesToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin", body["username"])
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-abc",
			"token_type":   "bearer",
		})
	})

	token, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestExportLeadsCSV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/leads/export", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"csv": "nome,empresa\nAna,Solar"})
	})

	csv, err := client.ExportLeadsCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nome,empresa\nAna,Solar", csv)
}

func TestUpdateLeadStatusEscapesID(t *testing.T) {
	var path, method string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UpdateLeadStatus(context.Background(), "id with space", "contatado")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/admin/leads/id%20with%20space", path)
}

func TestTransportErrorOnConnectionFailure(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := client.GetContent(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
}

func TestDecodeErrorIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.ListPlans(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}
