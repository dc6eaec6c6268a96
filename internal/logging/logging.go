// ABOUTME: Logger construction for console and optional file output
// ABOUTME: Console output goes to stderr so prompts on stdout stay clean
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Console output is human-readable on stderr;
// when filePath is non-empty, structured JSON is appended there as well.
func New(filePath string, quietConsole bool) (zerolog.Logger, error) {
	var writers []io.Writer

	if !quietConsole {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: failed to open %s: %w", filePath, err)
		}
		writers = append(writers, f)
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger(), nil
}
