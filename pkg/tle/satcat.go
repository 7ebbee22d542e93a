package tle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SATCATLineLength is the width of a fixed-column SATCAT record.
const SATCATLineLength = 133

// ErrUnknownFormat is returned when a file is neither TLE nor SATCAT.
var ErrUnknownFormat = errors.New("could not guess file type")

// Format identifies an input file type.
type Format int

const (
	FormatUnknown Format = iota
	FormatTLE
	FormatSATCAT
)

func (f Format) String() string {
	switch f {
	case FormatTLE:
		return "TLE"
	case FormatSATCAT:
		return "SATCAT"
	default:
		return "unknown"
	}
}

// Ownership is the owner code SATCAT assigns to a satellite.
type Ownership struct {
	NoradID string
	Owner   string
}

// Sniff guesses the format of a file from its lines. A file is TLE when more
// than half of its non-empty lines are element lines, and SATCAT when its
// first and last lines are full SATCAT records.
func Sniff(lines []string) Format {
	total, elements := 0, 0
	var first, last string
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if total == 0 {
			first = line
		}
		last = line
		total++
		if len(trimmed) == LineLength {
			elements++
		}
	}

	switch {
	case total == 0:
		return FormatUnknown
	case elements*2 > total:
		return FormatTLE
	case len(first) == SATCATLineLength && len(last) == SATCATLineLength:
		return FormatSATCAT
	default:
		return FormatUnknown
	}
}

// ParseSATCAT reads owner codes from a SATCAT file. Short lines are skipped.
func ParseSATCAT(r io.Reader) ([]Ownership, error) {
	var out []Ownership
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) < 56 {
			continue
		}
		out = append(out, Ownership{
			NoradID: strings.TrimSpace(line[13:18]),
			Owner:   strings.TrimSpace(line[49:56]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read SATCAT data: %w", err)
	}
	return out, nil
}
