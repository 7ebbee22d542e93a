package orbit

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

func issElements() Elements {
	return Elements{
		ID:           "25544",
		Inclination:  51.6416,
		RAAN:         247.4627,
		Eccentricity: 0.0006703,
		ArgPeriapsis: 130.536,
		MeanAnomaly:  325.0288,
		MeanMotion:   15.49,
		Owner:        "ISS",
	}
}

func TestSemiMajorAxisMatchesKeplersThirdLaw(t *testing.T) {
	for _, mm := range []float64{1.00273790935, 2.00563, 13.7, 15.5} {
		period := SecondsPerDay / mm
		want := math.Cbrt(mu * period * period / (4 * math.Pi * math.Pi))
		assert.InEpsilon(t, want, SemiMajorAxis(mm), 1e-9, "mean motion %g", mm)
	}

	// Geostationary radius.
	assert.InDelta(t, 42164.0, SemiMajorAxis(1.00273790935)/1000, 5)
}

func TestBasisIsOrthonormal(t *testing.T) {
	cases := []Elements{
		issElements(),
		{Inclination: 0, RAAN: 0, ArgPeriapsis: 0, MeanMotion: 1},
		{Inclination: 90, RAAN: 45, ArgPeriapsis: 180, MeanMotion: 2},
		{Inclination: 63.4, RAAN: 300, ArgPeriapsis: 270, Eccentricity: 0.7, MeanMotion: 2.006},
		{Inclination: 98.7, RAAN: 12, ArgPeriapsis: 359.9, MeanMotion: 14.2},
	}

	for _, el := range cases {
		o := New(el)
		assert.InDelta(t, 1, o.X.Len(), 1e-9)
		assert.InDelta(t, 1, o.Y.Len(), 1e-9)
		assert.InDelta(t, 0, o.X.Dot(o.Y), 1e-9)
		assert.GreaterOrEqual(t, o.SemiMajor, o.SemiMinor)
		assert.Greater(t, o.SemiMinor, 0.0)
	}
}

func TestBasisMatchesLineOfNodesCrossProduct(t *testing.T) {
	for _, argp := range []float64{45, 135, 200, 270, 330} {
		el := Elements{Inclination: 28.5, RAAN: 80, ArgPeriapsis: argp, MeanMotion: 15}
		o := New(el)

		ascending := linalg.Rotate(linalg.XAxis, linalg.YAxis, el.RAAN)
		normal := o.X.Cross(ascending).Normalize()
		y := o.X.Cross(normal)
		for i := range y {
			assert.InDelta(t, y[i], o.Y[i], 1e-9, "argp %g component %d", argp, i)
		}
	}
}

func TestBasisOnLineOfNodes(t *testing.T) {
	// cross(x, ascending) vanishes here; the frame must still be usable
	// and continuous with argP just above the line of nodes.
	for _, argp := range []float64{0, 180} {
		el := Elements{Inclination: 28.5, RAAN: 80, ArgPeriapsis: argp, MeanMotion: 15}
		o := New(el)
		assert.InDelta(t, 1, o.Y.Len(), 1e-9, "argp %g", argp)
		assert.InDelta(t, 0, o.X.Dot(o.Y), 1e-9, "argp %g", argp)
	}

	at := New(Elements{Inclination: 28.5, RAAN: 80, ArgPeriapsis: 0, MeanMotion: 15})
	near := New(Elements{Inclination: 28.5, RAAN: 80, ArgPeriapsis: 1e-4, MeanMotion: 15})
	for i := range at.Y {
		assert.InDelta(t, near.Y[i], at.Y[i], 1e-5)
	}
}

func TestEquatorialCircularOrbit(t *testing.T) {
	o := New(Elements{MeanMotion: 1})
	a := SemiMajorAxis(1)

	for e := 0.0; e < 360; e += 15 {
		p := PositionAt(o, e)
		assert.InDelta(t, a, p.Len(), a*1e-12)
		assert.InDelta(t, 0, p[1], 1e-6, "orbit must stay in the equatorial plane")
	}

	quarter := PositionAt(o, 90)
	assert.InDelta(t, 0, quarter[0], 1e-3)
	assert.InDelta(t, -a, quarter[2], 1e-3)
}

func TestPositionAtPeriapsisAndApoapsis(t *testing.T) {
	el := issElements()
	el.Eccentricity = 0.3
	o := New(el)

	assert.InEpsilon(t, o.SemiMajor*(1-el.Eccentricity), PositionAt(o, 0).Len(), 1e-12)
	assert.InEpsilon(t, o.SemiMajor*(1+el.Eccentricity), PositionAt(o, 180).Len(), 1e-12)
}

func TestMotionDirectionFollowsPeriapsis(t *testing.T) {
	// For an equatorial orbit the cross-product normal keeps the angular
	// momentum along +y while periapsis is in (0, 180] and flips it past 180.
	tests := []struct {
		argp      float64
		northward bool
	}{
		{45, true},
		{90, true},
		{135, true},
		{200, false},
		{270, false},
		{330, false},
	}

	for _, tt := range tests {
		o := New(Elements{ArgPeriapsis: tt.argp, MeanMotion: 3})
		h := PositionAt(o, 0).Cross(PositionAt(o, 10))
		if tt.northward {
			assert.Greater(t, h[1], 0.0, "argp %g", tt.argp)
		} else {
			assert.Less(t, h[1], 0.0, "argp %g", tt.argp)
		}
	}
}

func TestMeanAnomalyAt(t *testing.T) {
	o := New(Elements{Eccentricity: 0.5, MeanMotion: 2})

	assert.InDelta(t, 0, MeanAnomalyAt(o, 0), 1e-12)
	assert.InDelta(t, 180, MeanAnomalyAt(o, 180), 1e-9)
	assert.InDelta(t, 360, MeanAnomalyAt(o, 360), 1e-9)

	prev := MeanAnomalyAt(o, 0)
	for e := 1.0; e <= 360; e++ {
		m := MeanAnomalyAt(o, e)
		assert.Greater(t, m, prev)
		prev = m
	}

	circular := New(Elements{MeanMotion: 2})
	assert.InDelta(t, 123.4, MeanAnomalyAt(circular, 123.4), 1e-9)
}

func TestDerivedQuantities(t *testing.T) {
	o := New(issElements())

	assert.InDelta(t, 92.96, o.Period().Minutes(), 0.1)
	assert.InDelta(t, 415, o.PerigeeAltitude(), 15)
	assert.InDelta(t, 425, o.ApogeeAltitude(), 15)
	assert.Less(t, o.PerigeeAltitude(), o.ApogeeAltitude())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Elements)
		wantErr error
	}{
		{"valid", func(*Elements) {}, nil},
		{"parabolic", func(el *Elements) { el.Eccentricity = 1 }, ErrEccentricity},
		{"negative eccentricity", func(el *Elements) { el.Eccentricity = -0.1 }, ErrEccentricity},
		{"zero mean motion", func(el *Elements) { el.MeanMotion = 0 }, ErrMeanMotion},
		{"nan", func(el *Elements) { el.RAAN = math.NaN() }, ErrNotFinite},
		{"inf", func(el *Elements) { el.MeanMotion = math.Inf(1) }, ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := issElements()
			tt.mutate(&el)
			err := el.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewCatalog(t *testing.T) {
	epoch := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := epoch.Add(90 * time.Minute)

	sets := map[string][]Elements{
		"stations": {issElements()},
		"geo":      {{ID: "1", MeanMotion: 1.0027}, {ID: "2", MeanMotion: 1.0027, RAAN: 90}},
		"empty":    {},
	}

	c, err := NewCatalog(epoch, sets, WithClock(ClockFunc(func() time.Time { return now })))
	require.NoError(t, err)

	assert.Equal(t, []string{"empty", "geo", "stations"}, c.Sets())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Count("geo"))
	assert.Equal(t, 0, c.Count("missing"))
	assert.Equal(t, "25544", c.Orbits("stations")[0].ID)
	assert.Equal(t, 90*time.Minute, c.ElapsedTime())
	assert.Equal(t, epoch, c.Epoch())
}

func TestNewCatalogInvalid(t *testing.T) {
	bad := issElements()
	bad.ID = "bad"
	bad.Eccentricity = 1.2
	sets := map[string][]Elements{"misc": {issElements(), bad}}

	_, err := NewCatalog(time.Now(), sets)
	var elErr *ElementError
	require.True(t, errors.As(err, &elErr))
	assert.Equal(t, "misc", elErr.Set)
	assert.Equal(t, "bad", elErr.ID)
	assert.ErrorIs(t, err, ErrEccentricity)

	var skipped []string
	c, err := NewCatalog(time.Now(), sets, SkipInvalid(func(e *ElementError) {
		skipped = append(skipped, e.ID)
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count("misc"))
	assert.Equal(t, []string{"bad"}, skipped)
}
