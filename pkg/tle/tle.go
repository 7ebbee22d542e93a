// Package tle ingests two-line element sets and SATCAT ownership records and
// turns them into a catalog aligned to a single epoch.
package tle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// LineLength is the fixed width of a TLE element line.
const LineLength = 69

var (
	// ErrLineNumber is returned for element lines that start with neither
	// "1 " nor "2 ".
	ErrLineNumber = errors.New("invalid TLE line number")

	// ErrNoradMismatch is returned when line 2 does not belong to the
	// preceding line 1.
	ErrNoradMismatch = errors.New("NORAD id mismatch between TLE lines")

	// ErrOrphanLine is returned for a line 2 with no line 1 before it.
	ErrOrphanLine = errors.New("TLE line 2 without line 1")
)

// ChecksumError reports an element line whose modulo-10 checksum does not
// match its last column.
type ChecksumError struct {
	Line string
	Want int
	Got  int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum fail (%d, line says %d) for TLE line: %s", e.Got, e.Want, e.Line)
}

// Record is one satellite's element set as read from a TLE file.
type Record struct {
	NoradID        string
	Name           string
	Set            string
	Classification string
	IntlDesignator string
	Epoch          time.Time

	// Angles in degrees, mean motion in revolutions per day.
	Inclination  float64
	RAAN         float64
	Eccentricity float64
	ArgPerigee   float64
	MeanAnomaly  float64
	MeanMotion   float64
	RevNumber    int

	Owner string

	Line1 string
	Line2 string
}

// Checksum computes the TLE checksum of the first 68 columns: the sum of all
// digits, counting each minus sign as 1, modulo 10.
func Checksum(line string) int {
	if len(line) > LineLength-1 {
		line = line[:LineLength-1]
	}
	sum := 0
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

func verifyChecksum(line string) error {
	want, err := strconv.Atoi(line[LineLength-1:])
	if err != nil {
		return fmt.Errorf("invalid checksum digit in TLE line: %s", line)
	}
	if got := Checksum(line); got != want {
		return &ChecksumError{Line: line, Want: want, Got: got}
	}
	return nil
}

// ParseEpoch decodes the 14-column epoch field of line 1: a two-digit year
// (57-99 are 1900s) followed by the fractional day of the year, where day
// 1.0 is January 1st 00:00 UTC.
func ParseEpoch(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if len(field) < 3 {
		return time.Time{}, fmt.Errorf("epoch field too short: %q", field)
	}
	yy, err := strconv.Atoi(field[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", field[:2], err)
	}
	year := 2000 + yy
	if yy > 56 {
		year = 1900 + yy
	}
	days, err := strconv.ParseFloat(strings.TrimSpace(field[2:]), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", field[2:], err)
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((days - 1) * 24 * float64(time.Hour))), nil
}

func parseFloat(line string, from, to int, what string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(line[from:to]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s in TLE line %q: %w", what, line, err)
	}
	return v, nil
}

// Parse reads a TLE file. Every record is tagged with set. Lines that are not
// 69 columns wide are taken as the name of the following element set.
func Parse(r io.Reader, set string) ([]Record, error) {
	var (
		records []Record
		name    string
		current *Record
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(line) != LineLength {
			name = line
			continue
		}

		if err := verifyChecksum(line); err != nil {
			return nil, err
		}

		switch line[:2] {
		case "1 ":
			epoch, err := ParseEpoch(line[18:32])
			if err != nil {
				return nil, err
			}
			current = &Record{
				NoradID:        strings.TrimSpace(line[2:7]),
				Name:           name,
				Set:            set,
				Classification: line[7:8],
				IntlDesignator: strings.TrimSpace(line[9:17]),
				Epoch:          epoch,
				Line1:          line,
			}

		case "2 ":
			if current == nil {
				return nil, fmt.Errorf("%w: %s", ErrOrphanLine, line)
			}
			if id := strings.TrimSpace(line[2:7]); id != current.NoradID {
				return nil, fmt.Errorf("%w: %s vs %s", ErrNoradMismatch, current.NoradID, id)
			}
			if err := parseLine2(current, line); err != nil {
				return nil, err
			}
			records = append(records, *current)
			current = nil

		default:
			return nil, fmt.Errorf("%w: %s", ErrLineNumber, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TLE data: %w", err)
	}
	return records, nil
}

func parseLine2(rec *Record, line string) error {
	var err error
	if rec.Inclination, err = parseFloat(line, 8, 16, "inclination"); err != nil {
		return err
	}
	if rec.RAAN, err = parseFloat(line, 17, 25, "RAAN"); err != nil {
		return err
	}
	if rec.Eccentricity, err = strconv.ParseFloat("0."+strings.TrimSpace(line[26:33]), 64); err != nil {
		return fmt.Errorf("invalid eccentricity in TLE line %q: %w", line, err)
	}
	if rec.ArgPerigee, err = parseFloat(line, 34, 42, "argument of perigee"); err != nil {
		return err
	}
	if rec.MeanAnomaly, err = parseFloat(line, 43, 51, "mean anomaly"); err != nil {
		return err
	}
	if rec.MeanMotion, err = parseFloat(line, 52, 63, "mean motion"); err != nil {
		return err
	}
	if rec.RevNumber, err = strconv.Atoi(strings.TrimSpace(line[63:68])); err != nil {
		return fmt.Errorf("invalid revolution number in TLE line %q: %w", line, err)
	}
	rec.Line2 = line
	return nil
}
