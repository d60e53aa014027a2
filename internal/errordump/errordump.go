// Package errordump writes detailed failure reports to timestamped files
// so operators can inspect crashes on devices without log aggregation.
package errordump

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxBodyDumpBytes caps how much of a request body ends up in a dump file.
const maxBodyDumpBytes = 10 * 1024

// RequestInfo captures the request context worth keeping in a dump.
type RequestInfo struct {
	URL        string
	Method     string
	ClientHost string
	Body       []byte
}

// Dumper writes error dumps into a directory.
type Dumper struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a dumper writing into dir. The directory is created on
// first use if missing.
func New(dir string, logger zerolog.Logger) *Dumper {
	return &Dumper{dir: dir, logger: logger, now: time.Now}
}

// Dump writes one error report. Dump failures are logged but never
// propagated: the dump must not mask the original error.
func (d *Dumper) Dump(err any, info RequestInfo) {
	ts := strings.ReplaceAll(d.now().Format("20060102_150405.000000"), ".", "_")
	filename := fmt.Sprintf("error_dump_%s.log", ts)

	if mkErr := os.MkdirAll(d.dir, 0o755); mkErr != nil {
		d.logger.Error().Err(mkErr).Str("file", filename).Msg("cannot create error dump directory")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Timestamp: %s\n", ts)
	fmt.Fprintf(&b, "Error: %v\n\n", err)

	b.WriteString("--- Request Details ---\n")
	fmt.Fprintf(&b, "URL: %s\n", valueOr(info.URL))
	fmt.Fprintf(&b, "Method: %s\n", valueOr(info.Method))
	fmt.Fprintf(&b, "Client Host: %s\n", valueOr(info.ClientHost))
	if info.Body != nil {
		b.WriteString("Body:\n")
		if len(info.Body) > maxBodyDumpBytes {
			fmt.Fprintf(&b, "(Truncated, size=%d > %d)\n", len(info.Body), maxBodyDumpBytes)
			b.Write(info.Body[:maxBodyDumpBytes])
			b.WriteString("...\n")
		} else {
			b.Write(info.Body)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n--- Stack ---\n")
	b.Write(debug.Stack())

	path := filepath.Join(d.dir, filename)
	if writeErr := os.WriteFile(path, []byte(b.String()), 0o644); writeErr != nil {
		d.logger.Error().Err(writeErr).Str("file", filename).Msg("failed to write error dump")
		return
	}
	d.logger.Info().Str("file", path).Msg("error details dumped")
}

func valueOr(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
