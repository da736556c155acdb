package astro

import "math"

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

func dsin(d float64) float64 { return math.Sin(rad(d)) }
func dcos(d float64) float64 { return math.Cos(rad(d)) }
func dtan(d float64) float64 { return math.Tan(rad(d)) }

func darcsin(x float64) float64     { return deg(math.Asin(x)) }
func darccos(x float64) float64     { return deg(math.Acos(x)) }
func darctan2(y, x float64) float64 { return deg(math.Atan2(y, x)) }
func darccot(x float64) float64     { return deg(math.Atan(1 / x)) }

func fixAngle(a float64) float64 { return fix(a, 360) }
func fixHour(h float64) float64  { return fix(h, 24) }

func fix(a, b float64) float64 {
	a = a - b*math.Floor(a/b)
	if a < 0 {
		a += b
	}
	return a
}
