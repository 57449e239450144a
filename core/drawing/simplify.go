package drawing

import "math"

const (
	// Tolerance is the maximum distance, in canvas pixels, a dropped point may sit from the kept path.
	Tolerance = 2.0

	epsilon = 2.220446049250313e-16
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Simplify reduces the number of points of a polyline while preserving its shape.
// Without highQuality a radial distance pass runs before Douglas-Peucker.
// Polylines of two points or less are returned unchanged.
func Simplify(points []Point, tolerance float64, highQuality bool) []Point {
	if len(points) <= 2 {
		return points
	}
	sqTolerance := tolerance * tolerance
	if !highQuality {
		points = simplifyRadialDist(points, sqTolerance)
	}
	return simplifyDouglasPeucker(points, sqTolerance)
}

func sqDist(p1, p2 Point) float64 {
	dx, dy := p1.X-p2.X, p1.Y-p2.Y
	return dx*dx + dy*dy
}

// sqSegDist is the square distance from p to the segment [p1, p2].
func sqSegDist(p, p1, p2 Point) float64 {
	x, y := p1.X, p1.Y
	dx, dy := p2.X-x, p2.Y-y

	if dx != 0 || dy != 0 {
		t := ((p.X-x)*dx + (p.Y-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = p2.X, p2.Y
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx, dy = p.X-x, p.Y-y
	return dx*dx + dy*dy
}

func simplifyRadialDist(points []Point, sqTolerance float64) []Point {
	prev := points[0]
	res := []Point{prev}
	var point Point
	for _, point = range points[1:] {
		if sqDist(point, prev) > sqTolerance {
			res = append(res, point)
			prev = point
		}
	}
	if prev != point {
		res = append(res, point)
	}
	return res
}

func simplifyDPStep(points []Point, first, last int, sqTolerance float64, res []Point) []Point {
	maxSqDist := sqTolerance
	index := -1
	for i := first + 1; i < last; i++ {
		if d := sqSegDist(points[i], points[first], points[last]); d > maxSqDist {
			index = i
			maxSqDist = d
		}
	}

	if index >= 0 {
		if index-first > 1 {
			res = simplifyDPStep(points, first, index, sqTolerance, res)
		}
		res = append(res, points[index])
		if last-index > 1 {
			res = simplifyDPStep(points, index, last, sqTolerance, res)
		}
	}
	return res
}

func simplifyDouglasPeucker(points []Point, sqTolerance float64) []Point {
	last := len(points) - 1
	res := []Point{points[0]}
	res = simplifyDPStep(points, 0, last, sqTolerance, res)
	return append(res, points[last])
}

// Round2 rounds n to 2 decimal places, halves rounding up.
func Round2(n float64) float64 {
	return math.Floor((n+epsilon)*100+0.5) / 100
}
