package warehouse_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/queryconsole/go-query-console/warehouse"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		TokenType:   "Bearer",
		AccessToken: "test-access-token",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func TestClient_ExecuteStatement(t *testing.T) {
	t.Run("successful statement yields columns and rows", func(t *testing.T) {
		var gotBody map[string]any
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/2.0/sql/statements", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"statement_id": "stmt-1",
				"status": {"state": "SUCCEEDED"},
				"manifest": {"schema": {"columns": [{"name": "id"}, {"name": "name"}]}},
				"result": {"data_array": [["1", "alpha"], ["2", "beta"]]}
			}`))
		}))
		defer srv.Close()

		client := warehouse.New(srv.URL, "wh-1")
		result, err := client.ExecuteStatement(context.Background(), testToken(), "SELECT id, name FROM things")
		require.NoError(t, err)

		require.Equal(t, []string{"id", "name"}, result.Columns)
		require.Equal(t, [][]string{{"1", "alpha"}, {"2", "beta"}}, result.Rows)

		require.Equal(t, "Bearer test-access-token", gotAuth)
		require.Equal(t, "SELECT id, name FROM things", gotBody["statement"])
		require.Equal(t, "wh-1", gotBody["warehouse_id"])
		require.Equal(t, "30s", gotBody["wait_timeout"])
		require.Equal(t, "CANCEL", gotBody["on_wait_timeout"])
	})

	t.Run("failed statement carries the provider message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"statement_id": "stmt-2",
				"status": {"state": "FAILED", "error": {"error_code": "BAD_REQUEST", "message": "TABLE_OR_VIEW_NOT_FOUND: nope"}}
			}`))
		}))
		defer srv.Close()

		client := warehouse.New(srv.URL, "wh-1")
		_, err := client.ExecuteStatement(context.Background(), testToken(), "SELECT * FROM nope")
		require.ErrorIs(t, err, warehouse.ErrQueryExecution)
		require.Contains(t, err.Error(), "TABLE_OR_VIEW_NOT_FOUND")
	})

	t.Run("non-terminal state without message is still an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"statement_id": "stmt-3", "status": {"state": "CANCELED"}}`))
		}))
		defer srv.Close()

		client := warehouse.New(srv.URL, "wh-1")
		_, err := client.ExecuteStatement(context.Background(), testToken(), "SELECT 1")
		require.ErrorIs(t, err, warehouse.ErrQueryExecution)
		require.Contains(t, err.Error(), "CANCELED")
	})

	t.Run("HTTP error surfaces the API message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error_code": "PERMISSION_DENIED", "message": "no access to warehouse"}`))
		}))
		defer srv.Close()

		client := warehouse.New(srv.URL, "wh-1")
		_, err := client.ExecuteStatement(context.Background(), testToken(), "SELECT 1")
		require.ErrorIs(t, err, warehouse.ErrQueryExecution)
		require.Contains(t, err.Error(), "no access to warehouse")
	})

	t.Run("HTTP error without a message falls back to the status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := warehouse.New(srv.URL, "wh-1")
		_, err := client.ExecuteStatement(context.Background(), testToken(), "SELECT 1")
		require.ErrorIs(t, err, warehouse.ErrQueryExecution)
		require.Contains(t, err.Error(), "Service Unavailable")
	})

	t.Run("transport failure is a query execution error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		srv.Close() // connection refused

		client := warehouse.New(srv.URL, "wh-1")
		_, err := client.ExecuteStatement(context.Background(), testToken(), "SELECT 1")
		require.ErrorIs(t, err, warehouse.ErrQueryExecution)
	})
}
