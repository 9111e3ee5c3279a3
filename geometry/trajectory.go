package geometry

import "math"

const (
	maxDeltaUDegreeTwo = 0.05
	maxDeltaUDefault   = 0.1
)

// StepTrajectory advances a position along curve toward target by speed.
// Degree-1, two-control-point curves are handled by a dedicated
// straight-segment specialization (projected-parameter stepping); all
// other curves use closest-parameter search plus an arc-length-derived
// parameter step, capped to keep segments smooth.
func StepTrajectory(curX, curY, targetX, targetY, speed float64, c Curve) (x, y, theta float64) {
	if c.Degree == 1 && len(c.ControlPoints) == 2 {
		return stepStraightSegment(curX, curY, targetX, targetY, speed, c)
	}

	u0 := ClosestParameter(c, curX, curY)

	length := EstimateLength(c)
	var deltaU float64
	if length > 0 {
		deltaU = speed / length
		if c.Degree == 2 {
			deltaU = math.Min(deltaU, maxDeltaUDegreeTwo)
		} else {
			deltaU = math.Min(deltaU, maxDeltaUDefault)
		}
	} else {
		deltaU = speed * 0.5
	}

	u1 := math.Min(u0+deltaU, 1.0)

	evalX, evalY, thetaExplicit, _, tangentTheta, hasExplicitTheta := Evaluate(c, u1)
	finalTheta := tangentTheta
	if hasExplicitTheta {
		finalTheta = thetaExplicit
	}

	distanceToTarget := Distance(evalX, evalY, targetX, targetY)
	if distanceToTarget <= speed {
		return targetX, targetY, finalTheta
	}

	if u1 >= 0.99 {
		angle := math.Atan2(targetY-evalY, targetX-evalX)
		return evalX + speed*math.Cos(angle), evalY + speed*math.Sin(angle), angle
	}

	return evalX, evalY, finalTheta
}

// stepStraightSegment handles the degree-1, 2-control-point case by
// projecting the current position onto the line between the two control
// points and advancing the projected parameter by speed/length.
func stepStraightSegment(curX, curY, targetX, targetY, speed float64, c Curve) (x, y, theta float64) {
	startX, startY := c.ControlPoints[0].X, c.ControlPoints[0].Y
	endX, endY := c.ControlPoints[1].X, c.ControlPoints[1].Y

	lineLength := Distance(startX, startY, endX, endY)

	t := 0.0
	if lineLength > 0 {
		dot := (curX-startX)*(endX-startX) + (curY-startY)*(endY-startY)
		t = dot / (lineLength * lineLength)
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	}

	newT := t
	if lineLength > 0 {
		newT = math.Min(t+speed/lineLength, 1.0)
	}

	newX := startX + newT*(endX-startX)
	newY := startY + newT*(endY-startY)
	lineTheta := math.Atan2(endY-startY, endX-startX)

	if Distance(newX, newY, targetX, targetY) <= speed {
		return targetX, targetY, lineTheta
	}
	return newX, newY, lineTheta
}
