package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHealth(t *testing.T, body string, args ...string) (string, error) {
	t.Helper()
	isolateHome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--server", srv.URL, "--token-file", filepath.Join(t.TempDir(), "token"), "health"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthStrict(t *testing.T) {
	const degraded = `{"status":"degraded","store_connected":false}`

	out, err := runHealth(t, degraded)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: degraded")

	_, err = runHealth(t, degraded, "--strict")
	assert.ErrorIs(t, err, errDegraded)

	_, err = runHealth(t, `{"status":"ok","store_connected":true}`, "--strict")
	assert.NoError(t, err)
}
