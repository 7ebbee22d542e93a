// Package catalog reads and writes the element catalog consumed by the
// renderers. The on-disk form is a JSON object keyed by category name whose
// values are arrays of element tuples:
//
//	{"_epoch": 1709294400000, "stations": [["25544", 51.64, 247.46, 0.00067, 130.5, 325.0, 15.49, "ISS"]]}
//
// Keys starting with an underscore carry metadata. The same document may be
// wrapped as a script assignment (var data0=...;) so a browser page can load
// it directly; Decode accepts both forms.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

const (
	epochKey = "_epoch"
	jsPrefix = "var data0="
)

// UnknownOwner is written when no owner is known for a satellite.
const UnknownOwner = "?"

// Format selects the encoding written by Encode.
type Format int

const (
	// FormatJSON writes a plain JSON object.
	FormatJSON Format = iota
	// FormatJS wraps the JSON object in a var data0=...; statement.
	FormatJS
)

// Record is one satellite's elements in catalog order: id, inclination,
// RAAN, eccentricity, argument of periapsis, mean anomaly, mean motion and
// owner.
type Record struct {
	ID           string
	Inclination  float64
	RAAN         float64
	Eccentricity float64
	ArgPeriapsis float64
	MeanAnomaly  float64
	MeanMotion   float64
	Owner        string
}

// MarshalJSON encodes r as a positional tuple.
func (r Record) MarshalJSON() ([]byte, error) {
	owner := r.Owner
	if owner == "" {
		owner = UnknownOwner
	}
	return json.Marshal([]interface{}{
		r.ID, r.Inclination, r.RAAN, r.Eccentricity,
		r.ArgPeriapsis, r.MeanAnomaly, r.MeanMotion, owner,
	})
}

// UnmarshalJSON decodes a positional tuple. The id may be a string or a
// number and the owner is optional.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("record is not an array: %w", err)
	}
	if len(raw) < 7 {
		return fmt.Errorf("record has %d fields, want at least 7", len(raw))
	}

	id, err := decodeID(raw[0])
	if err != nil {
		return err
	}
	r.ID = id

	fields := []*float64{&r.Inclination, &r.RAAN, &r.Eccentricity, &r.ArgPeriapsis, &r.MeanAnomaly, &r.MeanMotion}
	for i, dst := range fields {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return fmt.Errorf("record %s field %d: %w", id, i+1, err)
		}
	}

	r.Owner = ""
	if len(raw) > 7 {
		if err := json.Unmarshal(raw[7], &r.Owner); err != nil {
			return fmt.Errorf("record %s owner: %w", id, err)
		}
	}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("record id must be a string or number: %s", raw)
	}
	return n.String(), nil
}

// Elements converts r into orbit model input.
func (r Record) Elements() orbit.Elements {
	return orbit.Elements{
		ID:           r.ID,
		Inclination:  r.Inclination,
		RAAN:         r.RAAN,
		Eccentricity: r.Eccentricity,
		ArgPeriapsis: r.ArgPeriapsis,
		MeanAnomaly:  r.MeanAnomaly,
		MeanMotion:   r.MeanMotion,
		Owner:        r.Owner,
	}
}

// File is a decoded catalog document.
type File struct {
	// Epoch is the instant every record's mean anomaly refers to.
	Epoch time.Time

	// Sets maps category name to its records.
	Sets map[string][]Record
}

// Names returns the category names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Sets))
	for name := range f.Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records across all categories.
func (f *File) Len() int {
	n := 0
	for _, recs := range f.Sets {
		n += len(recs)
	}
	return n
}

// Elements converts every category into orbit model input.
func (f *File) Elements() map[string][]orbit.Elements {
	out := make(map[string][]orbit.Elements, len(f.Sets))
	for name, recs := range f.Sets {
		els := make([]orbit.Elements, len(recs))
		for i, r := range recs {
			els[i] = r.Elements()
		}
		out[name] = els
	}
	return out
}

// Catalog builds the orbit catalog for f.
func (f *File) Catalog(opts ...orbit.Option) (*orbit.Catalog, error) {
	return orbit.NewCatalog(f.Epoch, f.Elements(), opts...)
}

// Decode reads a catalog document in either JSON or script form.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	data = unwrapScript(data)

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	f := &File{Sets: make(map[string][]Record)}
	for key, raw := range doc {
		if key == epochKey {
			var ms json.Number
			if err := json.Unmarshal(raw, &ms); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", epochKey, err)
			}
			epoch, err := parseMillis(ms)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", epochKey, err)
			}
			f.Epoch = epoch
			continue
		}
		if strings.HasPrefix(key, "_") {
			continue
		}

		var recs []Record
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("failed to parse set %q: %w", key, err)
		}
		f.Sets[key] = recs
	}

	if f.Epoch.IsZero() {
		return nil, fmt.Errorf("catalog has no %s", epochKey)
	}
	return f, nil
}

func parseMillis(n json.Number) (time.Time, error) {
	if ms, err := n.Int64(); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(int64(f * 1000)).UTC(), nil
}

func unwrapScript(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte(jsPrefix)) {
		return data
	}
	data = bytes.TrimPrefix(data, []byte(jsPrefix))
	return bytes.TrimSuffix(bytes.TrimSpace(data), []byte(";"))
}

// Load reads a catalog file from disk.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Encode writes f. Sets are written in sorted order so output is stable.
func (f *File) Encode(w io.Writer, format Format) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, "%q:%d", epochKey, f.Epoch.UnixMilli())
	for _, name := range f.Names() {
		recs := f.Sets[name]
		if recs == nil {
			recs = []Record{}
		}
		data, err := json.Marshal(recs)
		if err != nil {
			return fmt.Errorf("failed to encode set %q: %w", name, err)
		}
		key, _ := json.Marshal(name)
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')

	if format == FormatJS {
		if _, err := io.WriteString(w, jsPrefix); err != nil {
			return err
		}
		buf.WriteString(";\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Save writes f to path, choosing the script form for .js files.
func (f *File) Save(path string) error {
	format := FormatJSON
	if strings.EqualFold(filepath.Ext(path), ".js") {
		format = FormatJS
	}

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	if err := f.Encode(fh, format); err != nil {
		fh.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return fh.Close()
}
