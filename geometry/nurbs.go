package geometry

import "math"

// Curve is the minimal shape Evaluate and friends need from a NURBS
// trajectory: degree, non-decreasing knot vector of length n+degree+1,
// and n weighted (optionally oriented) control points.
type Curve struct {
	Degree        int
	KnotVector    []float64
	ControlPoints []CurvePoint
}

// CurvePoint is one control point: position, weight (1.0 if unset by the
// caller), and an optional explicit orientation.
type CurvePoint struct {
	X, Y           float64
	Weight         float64
	Orientation    float64
	HasOrientation bool
}

// BasisFunctions computes the Cox-de Boor basis weights for parameter u,
// returning n = len(knotVector)-degree-1 weights. Denominators that
// evaluate to zero contribute nothing, matching the reference
// implementation's skip-on-zero-denominator behavior.
func BasisFunctions(degree int, knotVector []float64, u float64) []float64 {
	n := len(knotVector) - degree - 1
	if n <= 0 {
		return nil
	}
	basis := make([]float64, n)

	span := degree
	for i := degree; i < len(knotVector)-1; i++ {
		if u >= knotVector[i] && u < knotVector[i+1] {
			span = i
			break
		}
	}
	if u >= knotVector[len(knotVector)-1] {
		span = len(knotVector) - degree - 2
	}
	if span < 0 {
		span = 0
	}
	if span >= n {
		span = n - 1
	}

	basis[span] = 1.0

	for k := 1; k <= degree; k++ {
		temp := make([]float64, n)
		lo := span - k
		if lo < 0 {
			lo = 0
		}
		for j := lo; j <= span; j++ {
			if j >= n {
				continue
			}
			saved := 0.0
			if basis[j] != 0 && j+k < len(knotVector) {
				denom := knotVector[j+k] - knotVector[j]
				if denom != 0 {
					left := (u - knotVector[j]) / denom
					saved = basis[j] * left
				}
			}
			if j < n-1 && basis[j+1] != 0 && j+k+1 < len(knotVector) {
				denom := knotVector[j+k+1] - knotVector[j+1]
				if denom != 0 {
					right := (knotVector[j+k+1] - u) / denom
					saved += basis[j+1] * right
				}
			}
			temp[j] = saved
		}
		basis = temp
	}

	return basis
}

// Evaluate returns the curve's weighted position at u, its explicit
// orientation (if any control point that contributes at u carries one),
// and the tangent direction estimated by re-evaluating at u+1e-3.
func Evaluate(c Curve, u float64) (x, y, thetaExplicit, tangentX, tangentTheta float64, hasExplicitTheta bool) {
	x, y, thetaExplicit, hasExplicitTheta = evaluatePosition(c, u)

	delta := 1e-3
	uNext := math.Min(u+delta, 1.0)
	xNext, yNext, _, _ := evaluatePositionOnly(c, uNext)

	tangentX = xNext - x
	tangentY := yNext - y
	tangentTheta = math.Atan2(tangentY, tangentX)
	return
}

func evaluatePosition(c Curve, u float64) (x, y, theta float64, hasExplicitTheta bool) {
	basis := BasisFunctions(c.Degree, c.KnotVector, u)
	totalWeight := 0.0
	thetaWeightSum := 0.0

	for i, w := range basis {
		if w <= 0 || i >= len(c.ControlPoints) {
			continue
		}
		cp := c.ControlPoints[i]
		weighted := w * cp.Weight
		x += cp.X * weighted
		y += cp.Y * weighted
		if cp.HasOrientation {
			theta += cp.Orientation * weighted
			thetaWeightSum += weighted
			hasExplicitTheta = true
		}
		totalWeight += weighted
	}

	if totalWeight > 0 {
		x /= totalWeight
		y /= totalWeight
		if hasExplicitTheta && thetaWeightSum > 0 {
			theta /= thetaWeightSum
		}
	}
	return x, y, theta, hasExplicitTheta
}

func evaluatePositionOnly(c Curve, u float64) (x, y float64, totalWeight float64, basis []float64) {
	basis = BasisFunctions(c.Degree, c.KnotVector, u)
	for i, w := range basis {
		if w <= 0 || i >= len(c.ControlPoints) {
			continue
		}
		cp := c.ControlPoints[i]
		weighted := w * cp.Weight
		x += cp.X * weighted
		y += cp.Y * weighted
		totalWeight += weighted
	}
	if totalWeight > 0 {
		x /= totalWeight
		y /= totalWeight
	}
	return x, y, totalWeight, basis
}

const curveSampleCount = 100

// ClosestParameter samples u in {0, 1/100, ..., 1} and returns the u
// minimizing Euclidean distance from (x, y) to the evaluated curve point.
func ClosestParameter(c Curve, x, y float64) float64 {
	closestU := 0.0
	minDistance := math.Inf(1)
	for i := 0; i <= curveSampleCount; i++ {
		u := float64(i) / float64(curveSampleCount)
		px, py, _, _ := evaluatePositionOnly(c, u)
		d := Distance(x, y, px, py)
		if d < minDistance {
			minDistance = d
			closestU = u
		}
	}
	return closestU
}

// EstimateLength sums the segment lengths between the same 101 samples
// ClosestParameter uses.
func EstimateLength(c Curve) float64 {
	total := 0.0
	var prevX, prevY float64
	first := true
	for i := 0; i <= curveSampleCount; i++ {
		u := float64(i) / float64(curveSampleCount)
		px, py, _, _ := evaluatePositionOnly(c, u)
		if !first {
			total += Distance(prevX, prevY, px, py)
		}
		prevX, prevY = px, py
		first = false
	}
	return total
}
