package engine

import (
	"math"
	"testing"
	"time"

	"vda5050-simulator/protocol"
)

func testIdentity() Identity {
	return Identity{
		Manufacturer:   "TEST",
		SerialNumber:   "TEST-AGV-001",
		VDAVersion:     "v2",
		VDAFullVersion: "2.0.0",
		MapID:          "test_map",
	}
}

func testSettings() Settings {
	return Settings{ActionTime: 0, Speed: 0.1}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func initPositionAction() protocol.Action {
	return protocol.Action{
		ActionID:     "init_pos_001",
		ActionType:   "initPosition",
		BlockingType: protocol.BlockingHard,
		ActionParameters: []protocol.ActionParameter{
			{Key: "x", Value: protocol.NewFloatParameterValue(10.5)},
			{Key: "y", Value: protocol.NewFloatParameterValue(20.3)},
			{Key: "theta", Value: protocol.NewFloatParameterValue(1.57)},
			{Key: "mapId", Value: protocol.NewStringParameterValue("test_map")},
			{Key: "lastNodeId", Value: protocol.NewStringParameterValue("node_001")},
		},
	}
}

// S1 - initPosition literal scenario.
func TestInitPositionScenario(t *testing.T) {
	e := New(testIdentity(), testSettings())
	e.AcceptInstantActions(protocol.InstantActions{Actions: []protocol.Action{initPositionAction()}})

	e.Tick(nil)

	pos := e.state.AgvPosition
	if pos == nil {
		t.Fatalf("expected agv_position to be set")
	}
	if !almostEqual(pos.X, 10.5, 1e-9) || !almostEqual(pos.Y, 20.3, 1e-9) || !almostEqual(pos.Theta, 1.57, 1e-9) {
		t.Errorf("got position (%v, %v, %v), want (10.5, 20.3, 1.57)", pos.X, pos.Y, pos.Theta)
	}
	if !pos.PositionInitialized {
		t.Errorf("expected position_initialized to be true")
	}
	if pos.MapID != "test_map" {
		t.Errorf("got map_id %q, want test_map", pos.MapID)
	}
	if e.state.ActionStates[0].ActionStatus != protocol.ActionFinished {
		t.Errorf("got action status %v, want FINISHED", e.state.ActionStates[0].ActionStatus)
	}
	if e.state.LastNodeID != "node_001" {
		t.Errorf("got last_node_id %q, want node_001", e.state.LastNodeID)
	}
	if e.visualization.AgvPosition == nil || e.visualization.AgvPosition.X != pos.X || e.visualization.AgvPosition.Y != pos.Y {
		t.Errorf("visualization position does not mirror state position")
	}
}

// S2 - ready gate.
func TestReadyGateScenario(t *testing.T) {
	e := New(testIdentity(), testSettings())
	if e.IsReadyForNewOrder() {
		t.Errorf("fresh engine should not be ready for a new order")
	}

	e.AcceptInstantActions(protocol.InstantActions{Actions: []protocol.Action{initPositionAction()}})
	e.Tick(nil)

	if !e.IsReadyForNewOrder() {
		t.Errorf("engine should be ready for a new order after initPosition")
	}
}

func twoNodeOrder() protocol.Order {
	return protocol.Order{
		OrderID:       "order_001",
		OrderUpdateID: 0,
		Nodes: []protocol.Node{
			{
				NodeID:     "N1",
				SequenceID: 1,
				Released:   true,
				NodePosition: &protocol.NodePosition{X: 10.5, Y: 20.3, MapID: "test_map"},
			},
			{
				NodeID:     "N2",
				SequenceID: 3,
				Released:   true,
				NodePosition: &protocol.NodePosition{X: 15.0, Y: 25.0, MapID: "test_map"},
			},
		},
		Edges: []protocol.Edge{
			{
				EdgeID:      "E1",
				SequenceID:  2,
				Released:    true,
				StartNodeID: "N1",
				EndNodeID:   "N2",
			},
		},
	}
}

// canAcceptOrder must reject on any unreleased node in node_states, not
// only an unreleased head node: a released head node with an unreleased
// horizon node behind it still blocks acceptance until the vehicle
// catches up to that head node.
func TestCanAcceptOrderRejectsOnUnreleasedHorizonNode(t *testing.T) {
	e := New(testIdentity(), testSettings())
	e.state.AgvPosition = &protocol.AgvPosition{X: 0, Y: 0, PositionInitialized: true}
	e.state.LastNodeSequenceID = 0
	e.state.NodeStates = []protocol.NodeState{
		{NodeID: "N1", SequenceID: 5, Released: true, NodePosition: &protocol.NodePosition{X: 0, Y: 0}},
		{NodeID: "N2", SequenceID: 7, Released: false, NodePosition: &protocol.NodePosition{X: 10, Y: 10}},
	}

	if e.canAcceptOrder(nil) {
		t.Errorf("expected rejection: head node sequence id (5) has not been reached (last_node_sequence_id=0) and a horizon node is unreleased")
	}
}

// When every node_state is released, a mismatched head sequence id no
// longer matters -- the original "has_unreleased_nodes" gate does not
// fire and the proximity check alone decides.
func TestCanAcceptOrderAllowsFullyReleasedOrder(t *testing.T) {
	e := New(testIdentity(), testSettings())
	e.state.AgvPosition = &protocol.AgvPosition{X: 0, Y: 0, PositionInitialized: true}
	e.state.LastNodeSequenceID = 0
	e.state.NodeStates = []protocol.NodeState{
		{NodeID: "N1", SequenceID: 5, Released: true, NodePosition: &protocol.NodePosition{X: 0, Y: 0}},
		{NodeID: "N2", SequenceID: 7, Released: true, NodePosition: &protocol.NodePosition{X: 10, Y: 10}},
	}

	if !e.canAcceptOrder(nil) {
		t.Errorf("expected acceptance: every node is released so the arrival gate does not apply")
	}
}

// S3 - order rejection pre-init.
func TestOrderRejectedBeforeInitScenario(t *testing.T) {
	e := New(testIdentity(), testSettings())
	e.ProcessOrder(twoNodeOrder(), nil)

	if e.state.OrderID != "" {
		t.Errorf("got order_id %q, want empty", e.state.OrderID)
	}
	if len(e.state.NodeStates) != 0 {
		t.Errorf("got %d node states, want 0", len(e.state.NodeStates))
	}
}

// S4 - two-node order completes within 100 ticks.
func TestTwoNodeOrderCompletesScenario(t *testing.T) {
	settings := Settings{ActionTime: 0, Speed: 0.1}
	e := New(testIdentity(), settings)
	e.AcceptInstantActions(protocol.InstantActions{Actions: []protocol.Action{initPositionAction()}})
	e.Tick(nil)

	e.ProcessOrder(twoNodeOrder(), nil)
	if len(e.state.NodeStates) != 2 {
		t.Fatalf("got %d node states, want 2", len(e.state.NodeStates))
	}
	if len(e.state.EdgeStates) != 1 {
		t.Fatalf("got %d edge states, want 1", len(e.state.EdgeStates))
	}

	for i := 0; i < 100; i++ {
		e.Tick(nil)
	}

	if len(e.state.NodeStates) != 0 {
		t.Errorf("got %d node states remaining, want 0", len(e.state.NodeStates))
	}
	if len(e.state.EdgeStates) != 0 {
		t.Errorf("got %d edge states remaining, want 0", len(e.state.EdgeStates))
	}

	distance := geometryDistance(e.state.AgvPosition.X, e.state.AgvPosition.Y, 15.0, 25.0)
	if distance > 0.2 {
		t.Errorf("final position too far from target: distance=%v", distance)
	}
}

func geometryDistance(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}

// S5 - action_time blocks motion. The first node's sequence id is set to
// 0 so it matches the engine's initial last_node_sequence_id and its
// action graduates on the very first tick after the order is accepted.
func TestActionTimeBlocksMotionScenario(t *testing.T) {
	settings := Settings{ActionTime: 10, Speed: 0.1}
	e := New(testIdentity(), settings)
	e.AcceptInstantActions(protocol.InstantActions{Actions: []protocol.Action{initPositionAction()}})
	e.Tick(nil)

	order := protocol.Order{
		OrderID:       "order_001",
		OrderUpdateID: 0,
		Nodes: []protocol.Node{
			{
				NodeID: "N1", SequenceID: 0, Released: true,
				NodePosition: &protocol.NodePosition{X: 10.5, Y: 20.3, MapID: "test_map"},
				Actions:      []protocol.Action{{ActionID: "a1", ActionType: "pick", BlockingType: protocol.BlockingHard}},
			},
			{
				NodeID: "N2", SequenceID: 2, Released: true,
				NodePosition: &protocol.NodePosition{X: 15.0, Y: 25.0, MapID: "test_map"},
			},
		},
		Edges: []protocol.Edge{
			{EdgeID: "E1", SequenceID: 1, Released: true, StartNodeID: "N1", EndNodeID: "N2"},
		},
	}
	e.ProcessOrder(order, nil)

	e.Tick(nil) // advanceNodeActions graduates "a1" and starts the action clock.
	if !e.actionRunning {
		t.Fatalf("expected an action to be in progress")
	}

	before := *e.state.AgvPosition
	for i := 0; i < 5; i++ {
		e.Tick(nil)
	}
	after := *e.state.AgvPosition

	if before.X != after.X || before.Y != after.Y {
		t.Errorf("position moved while action was in progress: before=%+v after=%+v", before, after)
	}
}

// S6 - straight-line trajectory one-tick step.
func TestStraightLineTrajectoryScenario(t *testing.T) {
	settings := Settings{ActionTime: 0, Speed: 1.0}
	e := New(testIdentity(), settings)
	e.AcceptInstantActions(protocol.InstantActions{Actions: []protocol.Action{
		{
			ActionID:     "init_pos_001",
			ActionType:   "initPosition",
			BlockingType: protocol.BlockingHard,
			ActionParameters: []protocol.ActionParameter{
				{Key: "x", Value: protocol.NewFloatParameterValue(0)},
				{Key: "y", Value: protocol.NewFloatParameterValue(0)},
				{Key: "theta", Value: protocol.NewFloatParameterValue(0)},
				{Key: "mapId", Value: protocol.NewStringParameterValue("test_map")},
			},
		},
	}})
	e.Tick(nil)

	order := protocol.Order{
		OrderID:       "order_s6",
		OrderUpdateID: 0,
		Nodes: []protocol.Node{
			{NodeID: "N0", SequenceID: 0, Released: true, NodePosition: &protocol.NodePosition{X: 0, Y: 0, MapID: "test_map"}},
			{NodeID: "N1", SequenceID: 2, Released: true, NodePosition: &protocol.NodePosition{X: 10, Y: 0, MapID: "test_map"}},
		},
		Edges: []protocol.Edge{
			{
				EdgeID: "E0", SequenceID: 1, Released: true, StartNodeID: "N0", EndNodeID: "N1",
				Trajectory: &protocol.Trajectory{
					Degree:     1,
					KnotVector: []float64{0, 0, 1, 1},
					ControlPoints: []protocol.ControlPoint{
						{X: 0, Y: 0},
						{X: 10, Y: 0},
					},
				},
			},
		},
	}
	e.ProcessOrder(order, nil)

	e.Tick(nil)

	pos := e.state.AgvPosition
	if !almostEqual(pos.X, 1.0, 1e-6) || !almostEqual(pos.Y, 0, 1e-6) || !almostEqual(pos.Theta, 0, 1e-6) {
		t.Errorf("got position (%v, %v, %v), want (1, 0, 0)", pos.X, pos.Y, pos.Theta)
	}
}

func TestActionInProgressGatesTick(t *testing.T) {
	e := New(testIdentity(), Settings{ActionTime: 100, Speed: 1})
	e.actionStartTime = time.Now()
	e.actionRunning = true

	if !e.actionInProgress() {
		t.Errorf("expected action to be reported in progress")
	}
}
