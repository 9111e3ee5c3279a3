package engine

import (
	"time"

	"vda5050-simulator/geometry"
	"vda5050-simulator/protocol"
)

const arrivalSlack = 0.1

// Tick runs one scheduler step: skip entirely while an action is in
// progress, otherwise dispatch any waiting instant actions, then (with
// an order present) graduate at most one node action and advance
// motion by one step. Tick never publishes; the adapter decides when
// to snapshot and send.
func (e *Engine) Tick(log func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.actionInProgress() {
		return
	}

	e.processInstantActions(log)

	if e.order == nil {
		return
	}

	e.advanceNodeActions()
	e.advanceMotion()
}

func (e *Engine) actionInProgress() bool {
	if !e.actionRunning {
		return false
	}
	elapsed := time.Since(e.actionStartTime)
	return elapsed.Seconds() < e.settings.ActionTime
}

func (e *Engine) processInstantActions(log func(string)) {
	if e.instantActions == nil {
		return
	}
	for _, action := range e.instantActions.Actions {
		index := e.findActionStateIndex(action.ActionID)
		if index < 0 || e.state.ActionStates[index].ActionStatus != protocol.ActionWaiting {
			continue
		}
		e.RunAction(action, log)
	}
}

// advanceNodeActions graduates at most one WAITING action belonging to
// the current node (the one whose sequence id matches
// last_node_sequence_id) per tick, then starts the action-time clock
// that blocks further ticks until it elapses.
func (e *Engine) advanceNodeActions() {
	currentNode, ok := e.findOrderNode(e.state.LastNodeSequenceID)
	if !ok || len(currentNode.Actions) == 0 {
		return
	}

	for _, action := range currentNode.Actions {
		index := e.findActionStateIndex(action.ActionID)
		if index < 0 || e.state.ActionStates[index].ActionStatus != protocol.ActionWaiting {
			continue
		}
		e.state.ActionStates[index].ActionStatus = protocol.ActionFinished
		e.actionStartTime = time.Now()
		e.actionRunning = true
		return
	}
}

func (e *Engine) findOrderNode(sequenceID int) (protocol.Node, bool) {
	if e.order == nil {
		return protocol.Node{}, false
	}
	for _, node := range e.order.Nodes {
		if node.SequenceID == sequenceID {
			return node, true
		}
	}
	return protocol.Node{}, false
}

// advanceMotion steps the vehicle toward the next released node and
// pops nodes/edges on arrival. A lone remaining NodeState is popped
// without ever driving to it, matching the tail-node shortcut the
// tick algorithm has always had.
func (e *Engine) advanceMotion() {
	if e.state.AgvPosition == nil || len(e.state.NodeStates) == 0 {
		return
	}

	if len(e.state.NodeStates) == 1 {
		e.state.NodeStates = e.state.NodeStates[:0]
		return
	}

	currentIndex := e.findNodeStateIndex(e.state.LastNodeSequenceID)
	if currentIndex < 0 {
		currentIndex = 0
	}
	nextIndex := currentIndex + 1
	if nextIndex >= len(e.state.NodeStates) {
		return
	}

	next := e.state.NodeStates[nextIndex]
	if !next.Released || next.NodePosition == nil {
		return
	}

	preStepDistance := geometry.Distance(
		e.state.AgvPosition.X, e.state.AgvPosition.Y,
		next.NodePosition.X, next.NodePosition.Y,
	)

	newX, newY, newTheta := e.stepTowardNode(next)

	e.state.AgvPosition.X = newX
	e.state.AgvPosition.Y = newY
	e.state.AgvPosition.Theta = newTheta
	e.visualization.AgvPosition = copyPosition(e.state.AgvPosition)

	if preStepDistance < e.settings.Speed+arrivalSlack {
		if len(e.state.NodeStates) > 0 {
			e.state.NodeStates = e.state.NodeStates[1:]
		}
		if len(e.state.EdgeStates) > 0 {
			e.state.EdgeStates = e.state.EdgeStates[1:]
		}
		e.state.LastNodeID = next.NodeID
		e.state.LastNodeSequenceID = next.SequenceID
	}
}

func (e *Engine) findNodeStateIndex(sequenceID int) int {
	for i, n := range e.state.NodeStates {
		if n.SequenceID == sequenceID {
			return i
		}
	}
	return -1
}

// stepTowardNode picks straight-line or NURBS stepping depending on
// whether the edge immediately preceding the target node carries a
// trajectory.
func (e *Engine) stepTowardNode(next protocol.NodeState) (x, y, theta float64) {
	pos := e.state.AgvPosition
	target := next.NodePosition

	var edge *protocol.EdgeState
	for i := range e.state.EdgeStates {
		if e.state.EdgeStates[i].SequenceID == next.SequenceID-1 {
			edge = &e.state.EdgeStates[i]
			break
		}
	}

	if edge != nil && edge.Trajectory != nil {
		curve := toCurve(*edge.Trajectory)
		return geometry.StepTrajectory(pos.X, pos.Y, target.X, target.Y, e.settings.Speed, curve)
	}

	return geometry.StepStraight(pos.X, pos.Y, target.X, target.Y, e.settings.Speed)
}

func toCurve(t protocol.Trajectory) geometry.Curve {
	points := make([]geometry.CurvePoint, len(t.ControlPoints))
	for i, cp := range t.ControlPoints {
		points[i] = geometry.CurvePoint{
			X:      cp.X,
			Y:      cp.Y,
			Weight: cp.WeightOrDefault(),
		}
		if cp.Orientation != nil {
			points[i].Orientation = *cp.Orientation
			points[i].HasOrientation = true
		}
	}
	return geometry.Curve{
		Degree:        t.Degree,
		KnotVector:    t.KnotVector,
		ControlPoints: points,
	}
}
