package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/iho/ledgerd/internal/adapter/http"
	"github.com/iho/ledgerd/internal/adapter/http/dto"
	"github.com/iho/ledgerd/internal/adapter/http/handler"
	"github.com/iho/ledgerd/internal/engine"
	"github.com/iho/ledgerd/internal/infrastructure/idgen"
	"github.com/iho/ledgerd/internal/infrastructure/metrics"
	"github.com/iho/ledgerd/internal/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	uc := usecase.NewLedgerUseCase(engine.New(), idgen.NewULIDGenerator(), m, zerolog.Nop())

	srv := httptest.NewServer(httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(uc),
		TransferHandler: handler.NewTransferHandler(uc),
		LedgerHandler:   handler.NewLedgerHandler(uc),
		HealthHandler:   handler.NewHealthHandler(nil),
		Logger:          zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the CLI with an isolated HOME and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		amount string
		scale  int32
		want   string
	}{
		{"250", 0, "250"},
		{"250", 2, "2.50"},
		{"5", 3, "0.005"},
		{"340282366920938463463374607431768211455", 2, "3402823669209384634633746074317682114.55"},
		{"bogus", 2, "bogus"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scaleAmount(tt.amount, tt.scale), "%s scale %d", tt.amount, tt.scale)
	}
}

func TestCommandsAgainstServer(t *testing.T) {
	srv := newTestServer(t)

	out, err := execute(t, "", "--url", srv.URL, "id")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	out, err = execute(t, "", "--url", srv.URL, "accounts", "create", "--id", "a1", "--ledger", "700", "--code", "10", "--history")
	require.NoError(t, err)
	var results dto.CreateResultsResponse
	require.NoError(t, jsonUnmarshal(out, &results))
	require.Len(t, results.Results, 1)
	assert.Equal(t, "ok", results.Results[0].Result)

	body := `{"accounts":[{"id":"a2","ledger":700,"code":10},{"id":"a3","ledger":0,"code":10}]}`
	out, err = execute(t, body, "--url", srv.URL, "accounts", "create", "-f", "-")
	require.NoError(t, err)
	require.NoError(t, jsonUnmarshal(out, &results))
	assert.Equal(t, "ok", results.Results[0].Result)
	assert.Equal(t, "invalid_ledger_or_code", results.Results[1].Result)

	out, err = execute(t, "", "--url", srv.URL, "transfers", "create",
		"--id", "b1", "--debit", "a1", "--credit", "a2", "--amount", "250", "--ledger", "700", "--code", "1")
	require.NoError(t, err)
	require.NoError(t, jsonUnmarshal(out, &results))
	assert.Equal(t, "ok", results.Results[0].Result)

	out, err = execute(t, "", "--url", srv.URL, "--table", "--scale", "2", "accounts", "lookup", "a1", "a2")
	require.NoError(t, err)
	assert.Contains(t, out, "2.50")

	out, err = execute(t, "", "--url", srv.URL, "account", "transfers", "a2", "--credits")
	require.NoError(t, err)
	var transfers dto.TransfersResponse
	require.NoError(t, jsonUnmarshal(out, &transfers))
	require.Len(t, transfers.Transfers, 1)
	assert.Equal(t, "b1", transfers.Transfers[0].ID)

	out, err = execute(t, "", "--url", srv.URL, "account", "balances", "a1")
	require.NoError(t, err)
	var balances dto.AccountBalancesResponse
	require.NoError(t, jsonUnmarshal(out, &balances))
	require.Len(t, balances.AccountBalances, 1)

	out, err = execute(t, "", "--url", srv.URL, "transfers", "query", "--ledger", "700")
	require.NoError(t, err)
	require.NoError(t, jsonUnmarshal(out, &transfers))
	assert.Len(t, transfers.Transfers, 1)

	out, err = execute(t, "", "--url", srv.URL, "--table", "ledger", "consistency")
	require.NoError(t, err)
	assert.Contains(t, out, "700")
}

func TestCommandRejectsMalformedInputLocally(t *testing.T) {
	_, err := execute(t, "", "--url", "http://127.0.0.1:1", "accounts", "lookup", "not-hex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account_ids[0]")

	_, err = execute(t, "", "--url", "http://127.0.0.1:1", "account", "transfers", "a1", "--from", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp_min_time")
}

func TestServerErrorIsReported(t *testing.T) {
	srv := newTestServer(t)

	_, err := execute(t, "", "--url", srv.URL, "account", "transfers", "a1", "--limit", "0")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

func TestConsistencyConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":"inconsistent","consistent":false,"ledgers":[{"ledger":1,"balanced":false}]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "", "--url", srv.URL, "ledger", "consistency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAILED")
	assert.Contains(t, out, `"inconsistent"`)
}

func TestURLFromEnvironmentAndConfigFile(t *testing.T) {
	srv := newTestServer(t)

	t.Setenv("LEDGERD_URL", srv.URL)
	out, err := execute(t, "", "id")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	t.Setenv("LEDGERD_URL", "")
	cfgFile := filepath.Join(t.TempDir(), "ledgerd.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("url: "+srv.URL+"\ntimeout: 5s\n"), 0o600))
	out, err = execute(t, "", "--config", cfgFile, "id")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	_, err = execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "id")
	require.Error(t, err)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := execute(t, "", "--url", srv.URL, "--timeout", "20ms", "id")
	require.Error(t, err)
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

func TestWindowedCommandsDescribePaging(t *testing.T) {
	for _, args := range [][]string{
		{"accounts", "query", "--help"},
		{"transfers", "query", "--help"},
		{"account", "transfers", "--help"},
		{"account", "balances", "--help"},
	} {
		out, err := execute(t, "", args...)
		require.NoError(t, err, args)
		assert.Contains(t, out, "Both bounds are inclusive", args)
		assert.Contains(t, out, "timestamp plus one as --from", args)
	}
}
