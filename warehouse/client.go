// Package warehouse executes SQL statements against a workspace's statement
// execution API on behalf of an authenticated user.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ErrQueryExecution indicates the downstream statement execution failed.
// Query side effects are unknown, so the call is never retried.
var ErrQueryExecution = errors.New("query execution failed")

const (
	statementsPath = "/api/2.0/sql/statements"

	// defaultWaitTimeout is how long the API is asked to block waiting for
	// the statement to finish. The call is synchronous; statements that
	// outlive the wait are cancelled server-side.
	defaultWaitTimeout = 30 * time.Second
)

// QueryResult is one statement's outcome: ordered column names and row
// data. It lives for a single HTTP response and is never cached.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// Client calls the statement execution endpoint of one workspace.
type Client struct {
	host        string
	warehouseID string
	waitTimeout time.Duration
	base        *http.Client
}

// New creates a Client bound to a workspace host and warehouse endpoint.
// The warehouse ID is fixed at construction rather than passed through
// shared state.
func New(host, warehouseID string) *Client {
	return &Client{
		host:        strings.TrimSuffix(host, "/"),
		warehouseID: warehouseID,
		waitTimeout: defaultWaitTimeout,
		base:        http.DefaultClient,
	}
}

type executeStatementRequest struct {
	Statement     string `json:"statement"`
	WarehouseID   string `json:"warehouse_id"`
	WaitTimeout   string `json:"wait_timeout"`
	OnWaitTimeout string `json:"on_wait_timeout"`
}

type statementError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type statementResponse struct {
	StatementID string `json:"statement_id"`
	Status      struct {
		State string          `json:"state"`
		Error *statementError `json:"error"`
	} `json:"status"`
	Manifest struct {
		Schema struct {
			Columns []struct {
				Name string `json:"name"`
			} `json:"columns"`
		} `json:"schema"`
	} `json:"manifest"`
	Result struct {
		DataArray [][]string `json:"data_array"`
	} `json:"result"`
}

// ExecuteStatement runs one SQL statement with the given token and waits
// for its result. Any authorization, statement or transport failure wraps
// ErrQueryExecution with the provider's message; partial results are never
// returned.
func (c *Client) ExecuteStatement(ctx context.Context, token *oauth2.Token, statement string) (*QueryResult, error) {
	body, err := json.Marshal(executeStatementRequest{
		Statement:     statement,
		WarehouseID:   c.warehouseID,
		WaitTimeout:   fmt.Sprintf("%ds", int(c.waitTimeout.Seconds())),
		OnWaitTimeout: "CANCEL",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+statementsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	req.Header.Set("Content-Type", "application/json")

	// oauth2.NewClient injects the bearer token on every request
	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.base),
		oauth2.StaticTokenSource(token),
	)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrQueryExecution, apiErrorMessage(resp.StatusCode, raw))
	}

	var sr statementResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrQueryExecution, err)
	}

	if sr.Status.State != "SUCCEEDED" {
		if sr.Status.Error != nil && sr.Status.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrQueryExecution, sr.Status.Error.Message)
		}
		return nil, fmt.Errorf("%w: statement finished in state %s", ErrQueryExecution, sr.Status.State)
	}

	result := &QueryResult{Rows: sr.Result.DataArray}
	for _, col := range sr.Manifest.Schema.Columns {
		result.Columns = append(result.Columns, col.Name)
	}
	return result, nil
}

// apiErrorMessage extracts the provider's message from a non-200 body,
// falling back to the HTTP status.
func apiErrorMessage(status int, raw []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return http.StatusText(status)
}
