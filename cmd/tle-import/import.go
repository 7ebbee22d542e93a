package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/tle"
)

// sniffLines is how much of a file is read to guess its format.
const sniffLines = 8

// Summary reports what one import run did.
type Summary struct {
	TLEFiles    int
	SATCATFiles int
	Satellites  int
	Categories  int
	Verified    int
	Rejected    []tle.Verification
}

// sniffFile guesses the format of path from its first lines.
func sniffFile(path string) (tle.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return tle.FormatUnknown, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for len(lines) < sniffLines && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return tle.FormatUnknown, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return tle.Sniff(lines), nil
}

// orderInputs puts element files before SATCAT files so owner codes land on
// satellites that are already known. Relative order within each group is kept.
func orderInputs(paths []string) ([]string, error) {
	formats := make(map[string]tle.Format, len(paths))
	for _, p := range paths {
		f, err := sniffFile(p)
		if err != nil {
			return nil, err
		}
		if f == tle.FormatUnknown {
			return nil, fmt.Errorf("cannot import %s: %w", p, tle.ErrUnknownFormat)
		}
		formats[p] = f
	}

	out := append([]string(nil), paths...)
	sort.SliceStable(out, func(i, j int) bool {
		return formats[out[i]] == tle.FormatTLE && formats[out[j]] == tle.FormatSATCAT
	})
	return out, nil
}

// importFiles merges every input into db.
func importFiles(db *tle.Database, paths []string, s *Summary) error {
	ordered, err := orderInputs(paths)
	if err != nil {
		return err
	}
	for _, p := range ordered {
		format, err := db.ImportFile(p)
		if err != nil {
			return err
		}
		switch format {
		case tle.FormatTLE:
			s.TLEFiles++
		case tle.FormatSATCAT:
			s.SATCATFiles++
		}
		log.Printf("  ✓ %s (%s)", p, format)
	}
	return nil
}

// verifyAll runs the SGP4 sanity check over every record and returns a
// database without the ones that fail it.
func verifyAll(src *tle.Database, toleranceKm float64, s *Summary) *tle.Database {
	kept := tle.NewDatabase()
	for _, rec := range src.Records() {
		v, err := tle.Verify(rec, toleranceKm)
		if err != nil {
			log.Printf("  ⚠️  %s skipped: %v", rec.NoradID, err)
			s.Rejected = append(s.Rejected, tle.Verification{NoradID: rec.NoradID})
			continue
		}
		if !v.OK {
			log.Printf("  ⚠️  %s", v)
			s.Rejected = append(s.Rejected, v)
			continue
		}
		kept.Merge(rec)
		s.Verified++
	}
	return kept
}

// writeCatalog builds the catalog file from db and writes it to path (or w
// when path is "-").
func writeCatalog(db *tle.Database, path string, w io.Writer, format catalog.Format, s *Summary) (*catalog.File, error) {
	f, err := db.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	s.Satellites = f.Len()
	s.Categories = len(f.Sets)

	if path == "-" {
		if err := f.Encode(w, format); err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return f, nil
	}
	if err := f.Save(path); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}
	return f, nil
}
