package common

import (
	"bufio"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LineReader reads newline-delimited list files, skipping blanks and comments.
type LineReader struct {
	logger zerolog.Logger
}

// NewLineReader creates a new LineReader instance
func NewLineReader(logger zerolog.Logger) *LineReader {
	return &LineReader{
		logger: logger.With().Str("component", "LineReader").Logger(),
	}
}

// ReadLines reads all non-empty, non-comment lines from the file at path.
// Lines starting with '#' are treated as comments. Leading and trailing
// whitespace is stripped per line.
func (lr *LineReader) ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, WrapErrorf(err, "failed to open list file '%s'", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			lr.logger.Error().Err(cerr).Str("path", path).Msg("Failed to close list file")
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, WrapErrorf(err, "failed to read list file '%s'", path)
	}

	lr.logger.Debug().Str("path", path).Int("count", len(lines)).Msg("Loaded list file")
	return lines, nil
}
