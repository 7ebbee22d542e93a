package orbit

import (
	"sort"
	"time"
)

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// Catalog groups orbits by category. It is immutable after construction and
// safe to share between goroutines.
type Catalog struct {
	epoch time.Time
	clock Clock
	sets  map[string][]Orbit
	names []string
	total int
}

// Option configures NewCatalog.
type Option func(*catalogOptions)

type catalogOptions struct {
	clock   Clock
	onError func(*ElementError)
}

// WithClock sets the clock used by ElapsedTime.
func WithClock(c Clock) Option {
	return func(o *catalogOptions) { o.clock = c }
}

// SkipInvalid drops element tuples that fail validation instead of failing
// the whole catalog. report, if non-nil, is called for each dropped tuple.
func SkipInvalid(report func(*ElementError)) Option {
	return func(o *catalogOptions) {
		if report == nil {
			report = func(*ElementError) {}
		}
		o.onError = report
	}
}

// NewCatalog builds orbits for every element tuple in sets. epoch is the
// instant the mean anomalies refer to.
//
// By default the first invalid tuple aborts construction with an
// *ElementError.
func NewCatalog(epoch time.Time, sets map[string][]Elements, opts ...Option) (*Catalog, error) {
	options := catalogOptions{clock: wallClock{}}
	for _, opt := range opts {
		opt(&options)
	}

	c := &Catalog{
		epoch: epoch,
		clock: options.clock,
		sets:  make(map[string][]Orbit, len(sets)),
	}

	for name, elements := range sets {
		orbits := make([]Orbit, 0, len(elements))
		for _, el := range elements {
			if err := el.Validate(); err != nil {
				elErr := &ElementError{Set: name, ID: el.ID, Err: err}
				if options.onError == nil {
					return nil, elErr
				}
				options.onError(elErr)
				continue
			}
			orbits = append(orbits, New(el))
		}
		c.sets[name] = orbits
		c.names = append(c.names, name)
		c.total += len(orbits)
	}
	sort.Strings(c.names)

	return c, nil
}

// Epoch returns the instant the catalog's mean anomalies refer to.
func (c *Catalog) Epoch() time.Time { return c.epoch }

// ElapsedTime returns how long it has been since the catalog epoch.
func (c *Catalog) ElapsedTime() time.Duration {
	return c.clock.Now().Sub(c.epoch)
}

// Now returns the catalog clock's current time.
func (c *Catalog) Now() time.Time { return c.clock.Now() }

// Sets returns the category names in sorted order.
func (c *Catalog) Sets() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Orbits returns the orbits in a category, in catalog order. The returned
// slice must not be modified.
func (c *Catalog) Orbits(set string) []Orbit { return c.sets[set] }

// Count returns the number of orbits in a category.
func (c *Catalog) Count(set string) int { return len(c.sets[set]) }

// Len returns the total number of orbits.
func (c *Catalog) Len() int { return c.total }
