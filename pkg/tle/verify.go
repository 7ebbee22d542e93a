package tle

import (
	"fmt"
	"math"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// DefaultToleranceKm is the slack allowed between the SGP4 radius and the
// two-body periapsis/apoapsis band.
const DefaultToleranceKm = 100.0

// Verification compares the SGP4 position of an element set at its own epoch
// with the radius band the two-body model implies.
type Verification struct {
	NoradID  string
	RadiusKm float64
	MinKm    float64
	MaxKm    float64
	OK       bool
}

func (v Verification) String() string {
	status := "ok"
	if !v.OK {
		status = "OUT OF BAND"
	}
	return fmt.Sprintf("%s: r=%.1f km, band [%.1f, %.1f] km, %s", v.NoradID, v.RadiusKm, v.MinKm, v.MaxKm, status)
}

// Verify propagates rec with SGP4 to its epoch and checks that the resulting
// radius lies between the two-body periapsis and apoapsis, widened by
// toleranceKm. It catches element sets that parse but describe nonsense.
func Verify(rec Record, toleranceKm float64) (Verification, error) {
	if rec.Line1 == "" || rec.Line2 == "" {
		return Verification{}, fmt.Errorf("record %s has no raw TLE lines", rec.NoradID)
	}
	if rec.MeanMotion <= 0 {
		return Verification{}, fmt.Errorf("record %s: %w", rec.NoradID, orbit.ErrMeanMotion)
	}

	sat := satellite.TLEToSat(rec.Line1, rec.Line2, satellite.GravityWGS72)
	t := rec.Epoch.UTC()
	pos, _ := satellite.Propagate(sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	r := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Verification{}, fmt.Errorf("record %s: SGP4 propagation diverged", rec.NoradID)
	}

	a := orbit.SemiMajorAxis(rec.MeanMotion) / 1000
	v := Verification{
		NoradID:  rec.NoradID,
		RadiusKm: r,
		MinKm:    a*(1-rec.Eccentricity) - toleranceKm,
		MaxKm:    a*(1+rec.Eccentricity) + toleranceKm,
	}
	v.OK = r >= v.MinKm && r <= v.MaxKm
	return v, nil
}
