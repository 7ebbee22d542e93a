// Package orbit turns classical orbital elements into geometry the renderers
// can draw: an ellipse described by its semi-axes and an orthonormal in-plane
// basis in world space.
//
// The model is a two-body approximation driven by mean motion. Positions are
// parameterised by eccentric anomaly; there is no Kepler solver, so callers
// that need a position at a given time work in mean anomaly instead.
package orbit

import (
	"math"
	"time"

	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// Physical constants used to derive the semi-major axis from mean motion.
const (
	// GravitationalConstant in m^3 kg^-1 s^-2.
	GravitationalConstant = 6.6738480e-11

	// EarthMass in kg.
	EarthMass = 5.97219e24

	// SecondsPerDay converts revolutions per day to SI units.
	SecondsPerDay = 86400.0

	// EarthRadiusKm is the equatorial radius used for the globe and for
	// altitude reporting.
	EarthRadiusKm = 6378.1
)

var (
	mu = GravitationalConstant * EarthMass

	// dayMeters folds the per-day time unit and μ into one factor.
	dayMeters = math.Pow(SecondsPerDay, 2.0/3.0) * math.Pow(mu, 1.0/3.0)

	// k = (4π²)^(1/3)
	k = math.Pow(4, 1.0/3.0) * math.Pow(math.Pi, 2.0/3.0)
)

// World-space reference directions. The equatorial plane is x/z with y
// pointing north.
var (
	reference = linalg.XAxis
	up        = linalg.YAxis
)

// Elements is one catalog entry: the classical elements of a single
// satellite. Angles are in degrees and mean motion in revolutions per day.
type Elements struct {
	ID           string
	Inclination  float64
	RAAN         float64
	Eccentricity float64
	ArgPeriapsis float64
	MeanAnomaly  float64
	MeanMotion   float64
	Owner        string
}

// Orbit is the renderable form of Elements. It is immutable once built.
type Orbit struct {
	ID string

	// M0 is the mean anomaly at the catalog epoch, in degrees.
	M0 float64

	// MeanMotion in revolutions per day.
	MeanMotion float64

	Eccentricity float64

	// SemiMajor and SemiMinor axes in meters.
	SemiMajor float64
	SemiMinor float64

	// X points from the focus toward periapsis; Y is 90 degrees ahead of X
	// in the direction of motion. Both are unit length.
	X linalg.Vec3
	Y linalg.Vec3

	Elements Elements
}

// SemiMajorAxis returns the semi-major axis in meters of an Earth orbit with
// the given mean motion (revolutions per day).
func SemiMajorAxis(meanMotion float64) float64 {
	return dayMeters / (k * math.Pow(meanMotion, 2.0/3.0))
}

// New builds the orbit described by el. It does not validate el; see
// Elements.Validate.
func New(el Elements) Orbit {
	a := SemiMajorAxis(el.MeanMotion)
	b := a * math.Sqrt(1-el.Eccentricity*el.Eccentricity)

	ascending := linalg.Rotate(reference, up, el.RAAN)
	x := linalg.Rotate(linalg.Rotate(reference, up, el.RAAN+el.ArgPeriapsis), ascending, el.Inclination)

	y := x.Cross(planeNormal(x, ascending, el.Inclination))

	return Orbit{
		ID:           el.ID,
		M0:           el.MeanAnomaly,
		MeanMotion:   el.MeanMotion,
		Eccentricity: el.Eccentricity,
		SemiMajor:    a,
		SemiMinor:    b,
		X:            x,
		Y:            y,
		Elements:     el,
	}
}

// degenerateNormal is the |cross(x, ascending)| below which periapsis is
// treated as lying on the line of nodes.
const degenerateNormal = 1e-9

// planeNormal returns normalize(cross(x, ascending)). When periapsis sits on
// the line of nodes that product vanishes and the normal of the equator
// tilted about the line of nodes is used instead, which is the limit as
// argP approaches 0 from above.
func planeNormal(x, ascending linalg.Vec3, incl float64) linalg.Vec3 {
	n := x.Cross(ascending)
	if n.Len() < degenerateNormal {
		return linalg.Rotate(up, ascending, incl).Scale(-1)
	}
	return n.Normalize()
}

// PositionAt returns the position in meters, relative to Earth's center, at
// eccentric anomaly eDeg.
func PositionAt(o Orbit, eDeg float64) linalg.Vec3 {
	e := linalg.DegToRad(eDeg)
	ex := (math.Cos(e) - o.Eccentricity) * o.SemiMajor
	ey := math.Sin(e) * o.SemiMinor
	return o.X.Scale(ex).Add(o.Y.Scale(ey))
}

// MeanAnomalyAt returns the mean anomaly in degrees corresponding to
// eccentric anomaly eDeg (Kepler's equation, forward direction).
func MeanAnomalyAt(o Orbit, eDeg float64) float64 {
	e := linalg.DegToRad(eDeg)
	return linalg.RadToDeg(e - o.Eccentricity*math.Sin(e))
}

// Period returns the time for one revolution.
func (o Orbit) Period() time.Duration {
	return time.Duration(SecondsPerDay / o.MeanMotion * float64(time.Second))
}

// PerigeeAltitude returns the height of periapsis above the equatorial
// radius, in km.
func (o Orbit) PerigeeAltitude() float64 {
	return o.SemiMajor*(1-o.Eccentricity)/1000 - EarthRadiusKm
}

// ApogeeAltitude returns the height of apoapsis above the equatorial radius,
// in km.
func (o Orbit) ApogeeAltitude() float64 {
	return o.SemiMajor*(1+o.Eccentricity)/1000 - EarthRadiusKm
}
