// Package geo places catalog orbits over the Earth at a given time. It solves
// Kepler's equation for the time-accurate position the renderers never need,
// then converts world-space positions to latitude, longitude and altitude.
//
// The world frame is equatorial and inertial: y points north and x toward the
// vernal equinox. A right-handed rotation about y by a right ascension
// carries x onto that direction, so east of x is -z.
package geo

import (
	"math"
	"time"

	"github.com/unklstewy/orbit-globe/pkg/linalg"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// J2000 is the Julian Date of 2000-01-01 12:00 UTC.
const J2000 = 2451545.0

// Geographic is a point above the Earth.
type Geographic struct {
	// Latitude in degrees, positive north
	Latitude float64 `json:"latitude"`
	// Longitude in degrees in [-180, 180), positive east
	Longitude float64 `json:"longitude"`
	// Altitude above the equatorial radius in km
	Altitude float64 `json:"altitude_km"`
}

// JulianDate converts t to a Julian Date.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	year := t.Year()
	month := int(t.Month())
	day := float64(t.Day()) +
		(float64(t.Hour())+
			float64(t.Minute())/60+
			(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600)/24

	// January and February count as months 13 and 14 of the previous year
	if month <= 2 {
		year--
		month += 12
	}

	a := year / 100
	b := 2 - a + a/4
	return float64(int(365.25*float64(year+4716))) +
		float64(int(30.6001*float64(month+1))) +
		day + float64(b) - 1524.5
}

// GMST returns Greenwich Mean Sidereal Time as an angle in degrees, [0, 360).
// Accurate to about a second of time.
func GMST(t time.Time) float64 {
	d := JulianDate(t) - J2000
	hours := math.Mod(18.697374558+24.06570982441908*d, 24)
	if hours < 0 {
		hours += 24
	}
	return hours * 15
}

// NormalizeLongitude wraps lon into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// SubPoint returns the point below a world-space position p (km) at time t.
func SubPoint(p linalg.Vec3, t time.Time) Geographic {
	r := p.Len()
	if r == 0 {
		return Geographic{Altitude: -orbit.EarthRadiusKm}
	}
	ra := linalg.RadToDeg(math.Atan2(-p[2], p[0]))
	return Geographic{
		Latitude:  linalg.RadToDeg(math.Asin(p[1] / r)),
		Longitude: NormalizeLongitude(ra - GMST(t)),
		Altitude:  r - orbit.EarthRadiusKm,
	}
}

// EccentricAnomaly solves Kepler's equation M = E - e·sin(E) for E by Newton
// iteration. Angles are in degrees; the result is in [0, 360).
func EccentricAnomaly(mDeg, e float64) float64 {
	m := linalg.DegToRad(math.Mod(mDeg, 360))
	if m < 0 {
		m += 2 * math.Pi
	}
	ea := m
	if e > 0.8 {
		ea = math.Pi
	}
	for i := 0; i < 50; i++ {
		d := (ea - e*math.Sin(ea) - m) / (1 - e*math.Cos(ea))
		ea -= d
		if math.Abs(d) < 1e-12 {
			break
		}
	}
	return math.Mod(linalg.RadToDeg(ea)+360, 360)
}

// MeanAnomalyAfter returns the mean anomaly of o in degrees, [0, 360),
// elapsed after the catalog epoch.
func MeanAnomalyAfter(o orbit.Orbit, elapsed time.Duration) float64 {
	days := elapsed.Seconds() / orbit.SecondsPerDay
	m := math.Mod(o.M0+360*o.MeanMotion*days, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// PositionAfter returns the world-space position of o in meters, elapsed
// after the catalog epoch.
func PositionAfter(o orbit.Orbit, elapsed time.Duration) linalg.Vec3 {
	return orbit.PositionAt(o, EccentricAnomaly(MeanAnomalyAfter(o, elapsed), o.Eccentricity))
}

// SatellitePoint returns where o is over the Earth at time t, given the
// catalog epoch.
func SatellitePoint(o orbit.Orbit, epoch, t time.Time) Geographic {
	p := PositionAfter(o, t.Sub(epoch)).Scale(1.0 / 1000)
	return SubPoint(p, t)
}

// DistanceKm is the great-circle distance between two surface points,
// using the haversine formula on the equatorial radius.
func DistanceKm(a, b Geographic) float64 {
	lat1, lat2 := linalg.DegToRad(a.Latitude), linalg.DegToRad(b.Latitude)
	dLat := lat2 - lat1
	dLon := linalg.DegToRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * orbit.EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FootprintKm is the ground radius, along the surface, from which a
// satellite at altitude km is above the horizon.
func FootprintKm(altitude float64) float64 {
	if altitude <= 0 {
		return 0
	}
	r := orbit.EarthRadiusKm
	return r * math.Acos(r/(r+altitude))
}
