// Package geo converts feature-service planar coordinates to decimal
// degrees. The two upstream layers use fixed projections (an Oregon
// state-plane Lambert grid in international feet and a web-mercator grid,
// also in feet), so the inverse transforms are hard-wired rather than
// configurable.
package geo

import "math"

const (
	footToMeter = 0.3048

	// GRS80 ellipsoid.
	grs80A = 6378137.0
	grs80F = 1.0 / 298.257222101

	// Spherical web-mercator radius.
	mercatorR = 6378137.0
)

// Projection inverts a planar coordinate pair to decimal degrees.
type Projection interface {
	Inverse(x, y float64) (lon, lat float64)
}

// InDecimalRange reports whether a pair already looks like decimal
// degrees. Upstream layers mix projected and unprojected features, so only
// out-of-range pairs are converted.
func InDecimalRange(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// LambertConformalConic is a two-standard-parallel Lambert grid on GRS80.
type LambertConformalConic struct {
	e            float64 // eccentricity
	n, f, rho0   float64 // projection constants
	lon0         float64 // radians
	falseEasting float64 // meters
}

// StatePlaneOregonNorth returns the inverse projection for the Oregon
// North state-plane grid the building and parking layers are published in.
func StatePlaneOregonNorth() *LambertConformalConic {
	return newLambertConformalConic(
		43.66666666666666, // lat_0
		46.0,              // lat_1
		44.33333333333334, // lat_2
		-120.5,            // lon_0
		2500000.0001424,   // x_0 (meters)
	)
}

func newLambertConformalConic(lat0, lat1, lat2, lon0, x0 float64) *LambertConformalConic {
	e := math.Sqrt(grs80F * (2 - grs80F))

	phi0 := lat0 * math.Pi / 180
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180

	m := func(phi float64) float64 {
		s := math.Sin(phi)
		return math.Cos(phi) / math.Sqrt(1-e*e*s*s)
	}
	t := func(phi float64) float64 {
		s := math.Sin(phi)
		return math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*s)/(1+e*s), e/2)
	}

	n := (math.Log(m(phi1)) - math.Log(m(phi2))) / (math.Log(t(phi1)) - math.Log(t(phi2)))
	f := m(phi1) / (n * math.Pow(t(phi1), n))
	rho0 := grs80A * f * math.Pow(t(phi0), n)

	return &LambertConformalConic{
		e:            e,
		n:            n,
		f:            f,
		rho0:         rho0,
		lon0:         lon0 * math.Pi / 180,
		falseEasting: x0,
	}
}

// Inverse converts grid feet to decimal degrees.
func (p *LambertConformalConic) Inverse(x, y float64) (lon, lat float64) {
	xm := x*footToMeter - p.falseEasting
	ym := p.rho0 - y*footToMeter

	rho := math.Sqrt(xm*xm + ym*ym)
	if p.n < 0 {
		rho = -rho
		xm = -xm
		ym = -ym
	}
	theta := math.Atan2(xm, ym)

	tVal := math.Pow(rho/(grs80A*p.f), 1/p.n)

	// Iterate the latitude series; converges in a handful of rounds.
	phi := math.Pi/2 - 2*math.Atan(tVal)
	for i := 0; i < 10; i++ {
		s := math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(tVal*math.Pow((1-p.e*s)/(1+p.e*s), p.e/2))
		if math.Abs(next-phi) < 1e-12 {
			phi = next
			break
		}
		phi = next
	}

	lon = (theta/p.n + p.lon0) * 180 / math.Pi
	lat = phi * 180 / math.Pi
	return lon, lat
}

// WebMercator is the spherical web-mercator grid, in feet, used by the
// fields layer.
type WebMercator struct{}

// WebMercatorFeet returns the inverse projection for the fields layer.
func WebMercatorFeet() *WebMercator {
	return &WebMercator{}
}

// Inverse converts grid feet to decimal degrees.
func (p *WebMercator) Inverse(x, y float64) (lon, lat float64) {
	xm := x * footToMeter
	ym := y * footToMeter

	lon = xm / mercatorR * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(ym/mercatorR)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}
