package errordump_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherlamp/weatherlamp/internal/errordump"
)

func readSingleDump(t *testing.T, dir string) (string, string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	return entries[0].Name(), string(data)
}

func TestDump_WritesReport(t *testing.T) {
	dir := t.TempDir()
	dumper := errordump.New(dir, zerolog.Nop())

	dumper.Dump("something broke", errordump.RequestInfo{
		URL:        "/v2?s=1,r15min,8,0,60.17,24.94",
		Method:     "GET",
		ClientHost: "10.0.0.7",
	})

	name, content := readSingleDump(t, dir)
	assert.True(t, strings.HasPrefix(name, "error_dump_"))
	assert.True(t, strings.HasSuffix(name, ".log"))
	// Timestamp in the name uses underscores only, no dots.
	assert.NotContains(t, strings.TrimSuffix(name, ".log"), ".")

	assert.Contains(t, content, "Error: something broke")
	assert.Contains(t, content, "URL: /v2?s=1,r15min,8,0,60.17,24.94")
	assert.Contains(t, content, "Method: GET")
	assert.Contains(t, content, "Client Host: 10.0.0.7")
	assert.Contains(t, content, "--- Stack ---")
}

func TestDump_MissingRequestFieldsRenderNA(t *testing.T) {
	dir := t.TempDir()
	dumper := errordump.New(dir, zerolog.Nop())

	dumper.Dump("panic in worker", errordump.RequestInfo{})

	_, content := readSingleDump(t, dir)
	assert.Contains(t, content, "URL: N/A")
	assert.Contains(t, content, "Method: N/A")
	assert.Contains(t, content, "Client Host: N/A")
	// No body section when the request carried none.
	assert.NotContains(t, content, "Body:")
}

func TestDump_TruncatesLargeBodies(t *testing.T) {
	dir := t.TempDir()
	dumper := errordump.New(dir, zerolog.Nop())

	body := bytes.Repeat([]byte("x"), 20*1024)
	dumper.Dump("oversized", errordump.RequestInfo{Method: "POST", Body: body})

	_, content := readSingleDump(t, dir)
	assert.Contains(t, content, "(Truncated, size=20480 > 10240)")
	// Only the capped prefix is included.
	assert.Less(t, len(content), 16*1024)
}

func TestDump_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dumps")
	dumper := errordump.New(dir, zerolog.Nop())

	dumper.Dump("first failure", errordump.RequestInfo{})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
