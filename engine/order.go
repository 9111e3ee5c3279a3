package engine

import (
	"vda5050-simulator/geometry"
	"vda5050-simulator/protocol"
)

const proximityThreshold = 0.1

// ProcessOrder runs the order acceptance state machine: a new order_id
// takes the new-order path, a higher order_update_id on the same
// order_id takes the update path, anything else is rejected. Both
// accepting paths share the arrival and proximity checks; only the
// new-order path additionally requires the vehicle to be idle.
func (e *Engine) ProcessOrder(order protocol.Order, log func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if order.OrderID != e.state.OrderID {
		e.handleNewOrder(order, log)
		return
	}
	if order.OrderUpdateID > e.state.OrderUpdateID {
		e.handleOrderUpdate(order, log)
		return
	}
	e.rejectOrder(log, "order update id not greater than current")
}

func (e *Engine) handleNewOrder(order protocol.Order, log func(string)) {
	if !e.canAcceptOrder(log) {
		return
	}
	if !e.isReadyForNewOrder() {
		e.rejectOrder(log, "there are active order/edge states")
		return
	}
	e.state.ActionStates = nil
	e.acceptOrder(order)
}

func (e *Engine) handleOrderUpdate(order protocol.Order, log func(string)) {
	if !e.canAcceptOrder(log) {
		return
	}
	e.state.ActionStates = nil
	e.acceptOrder(order)
}

// canAcceptOrder runs the arrival and proximity checks shared by both
// new-order and order-update paths.
func (e *Engine) canAcceptOrder(log func(string)) bool {
	unreleased := false
	for _, n := range e.state.NodeStates {
		if !n.Released {
			unreleased = true
			break
		}
	}
	if unreleased && len(e.state.NodeStates) > 0 &&
		e.state.NodeStates[0].SequenceID != e.state.LastNodeSequenceID {
		e.rejectOrder(log, "vehicle has not arrived at the latest released node")
		return false
	}

	if !e.isCloseToLastReleasedNode() {
		e.rejectOrder(log, "vehicle not close enough to last released node")
		return false
	}

	return true
}

// isCloseToLastReleasedNode returns true when there is no released
// node to check against, or that node has no position recorded --
// preserved as observed rather than tightened, per the source's
// documented looseness here.
func (e *Engine) isCloseToLastReleasedNode() bool {
	for _, node := range e.state.NodeStates {
		if !node.Released {
			continue
		}
		if node.NodePosition == nil || e.state.AgvPosition == nil {
			return true
		}
		distance := geometry.Distance(
			e.state.AgvPosition.X, e.state.AgvPosition.Y,
			node.NodePosition.X, node.NodePosition.Y,
		)
		return distance <= proximityThreshold
	}
	return true
}

func (e *Engine) acceptOrder(order protocol.Order) {
	stored := order
	e.order = &stored

	e.state.OrderID = order.OrderID
	e.state.OrderUpdateID = order.OrderUpdateID
	if order.OrderUpdateID == 0 {
		e.state.LastNodeSequenceID = 0
	}

	e.state.ActionStates = nil
	e.state.NodeStates = nil
	e.state.EdgeStates = nil

	for _, node := range order.Nodes {
		e.state.NodeStates = append(e.state.NodeStates, protocol.NodeState{
			NodeID:          node.NodeID,
			SequenceID:      node.SequenceID,
			Released:        node.Released,
			NodeDescription: node.NodeDescription,
			NodePosition:    node.NodePosition,
		})
		for _, action := range node.Actions {
			e.addActionState(action)
		}
	}

	for _, edge := range order.Edges {
		e.state.EdgeStates = append(e.state.EdgeStates, protocol.EdgeState{
			EdgeID:          edge.EdgeID,
			SequenceID:      edge.SequenceID,
			Released:        edge.Released,
			EdgeDescription: edge.EdgeDescription,
			Trajectory:      edge.Trajectory,
		})
		for _, action := range edge.Actions {
			e.addActionState(action)
		}
	}
}

func (e *Engine) addActionState(action protocol.Action) {
	e.state.ActionStates = append(e.state.ActionStates, protocol.ActionState{
		ActionID:          action.ActionID,
		ActionType:        action.ActionType,
		ActionDescription: action.ActionDescription,
		ActionStatus:      protocol.ActionWaiting,
	})
}

func (e *Engine) rejectOrder(log func(string), reason string) {
	if log != nil {
		log("Rejecting order: " + reason)
	}
}
