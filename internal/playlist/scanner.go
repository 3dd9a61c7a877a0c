package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/iptvx/internal/shared"
)

const (
	// MetadataMarker starts every metadata line.
	MetadataMarker = "#EXTINF"
	// Header is the first line of every filtered playlist.
	Header = "#EXTM3U"
)

// Pair is a metadata line and the data line that immediately followed it, both verbatim.
type Pair struct {
	Meta string
	Data string
}

// MatchFunc decides whether a metadata line starts an entry of interest.
type MatchFunc func(meta string) bool

type pairState int

const (
	idle pairState = iota
	awaitingData
)

func (s pairState) String() string {
	switch s {
	case idle:
		return "idle"
	case awaitingData:
		return "awaiting-data"
	default:
		return ""
	}
}

// PairScanner yields [Pair] values from a playlist stream, one per call to [PairScanner.Scan].
type PairScanner struct {
	lines *lineReader
	match MatchFunc
	state pairState
	held  string
	pair  Pair
}

// lineReader yields lines verbatim, terminator included.
type lineReader struct {
	r     *bufio.Reader
	count int
	err   error
	done  bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next line, or false at end of input or on a read error.
func (l *lineReader) next() (string, bool) {
	if l.done {
		return "", false
	}

	line, err := l.r.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF):
		l.done = true
		if line == "" {
			return "", false
		}
	case err != nil:
		l.err = fmt.Errorf("%w: read failed after %d lines: %v", shared.ErrSourceUnavailable, l.count, err)
		l.done = true
		return "", false
	}

	l.count++
	return line, true
}

// NewPairScanner returns a scanner over r; a nil match accepts every metadata line.
func NewPairScanner(r io.Reader, match MatchFunc) *PairScanner {
	if match == nil {
		match = func(string) bool { return true }
	}
	return &PairScanner{lines: newLineReader(r), match: match}
}

// IsMetadata reports whether line is a metadata line.
func IsMetadata(line string) bool {
	return strings.HasPrefix(line, MetadataMarker)
}

// Scan advances to the next complete pair.
//
// It returns false at end of input or on a read error; see [PairScanner.Err].
func (s *PairScanner) Scan() bool {
	for {
		line, ok := s.lines.next()
		if !ok {
			s.held = ""
			s.state = idle
			return false
		}
		if s.step(line) {
			return true
		}
	}
}

// step feeds one line to the state machine and reports whether it completed a pair.
func (s *PairScanner) step(line string) bool {
	switch s.state {
	case awaitingData:
		if !IsMetadata(line) {
			s.pair = Pair{Meta: s.held, Data: line}
			s.held = ""
			s.state = idle
			return true
		}
		s.held = ""
		s.state = idle
		return s.step(line)
	default:
		if IsMetadata(line) && s.match(line) {
			s.held = line
			s.state = awaitingData
		}
		return false
	}
}

// Pair returns the pair produced by the last successful call to [PairScanner.Scan].
func (s *PairScanner) Pair() Pair {
	return s.pair
}

// Err returns the first read error, if any.
func (s *PairScanner) Err() error {
	return s.lines.err
}
