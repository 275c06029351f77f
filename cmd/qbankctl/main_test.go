package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "qbankctl-test-secret")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCSVExport_EmptyStore(t *testing.T) {
	out, err := runCmd(t, "csv", "export")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\xef\xbb\xbfQuestion ID,Genre ID,"), out)
}

func TestCSVExport_UnknownFormat(t *testing.T) {
	_, err := runCmd(t, "csv", "export", "--format", "ods")
	assert.ErrorContains(t, err, "unknown format")
}

func TestCSVImport_ReportsSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	require.NoError(t, os.WriteFile(path, []byte("Question ID,Genre ID\nQ1,missing,x\n"), 0o600))

	out, err := runCmd(t, "csv", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"total_rows": 1`)
	assert.Contains(t, out, `"error_count": 1`)
}

func TestAdminCreate_ValidatesPassword(t *testing.T) {
	_, err := runCmd(t, "admin", "create", "--username", "root", "--password", "short")
	assert.ErrorContains(t, err, "password")

	out, err := runCmd(t, "admin", "create", "--username", "root", "--password", "password1")
	require.NoError(t, err)
	assert.Contains(t, out, `created admin "root"`)
}

func TestMigrate_NeedsPostgres(t *testing.T) {
	_, err := runCmd(t, "migrate", "up")
	assert.ErrorContains(t, err, "postgres driver")
}

func TestToken_UnknownUser(t *testing.T) {
	_, err := runCmd(t, "token", "--username", "nobody")
	assert.Error(t, err)
}
