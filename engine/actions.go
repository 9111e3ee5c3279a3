package engine

import (
	"context"
	"strconv"

	"github.com/looplab/fsm"

	"vda5050-simulator/protocol"
)

// AcceptInstantActions replaces the engine's pending instant-action
// batch and appends a WAITING ActionState for each action in it.
func (e *Engine) AcceptInstantActions(ia protocol.InstantActions) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored := ia
	e.instantActions = &stored

	for _, action := range ia.Actions {
		e.state.ActionStates = append(e.state.ActionStates, protocol.ActionState{
			ActionID:     action.ActionID,
			ActionType:   action.ActionType,
			ActionStatus: protocol.ActionWaiting,
		})
	}
}

// newActionLifecycle builds the fsm that drives one ActionState through
// WAITING -> RUNNING -> FINISHED (or FAILED) via named transitions, so
// the transitions are visible events rather than bare field writes. No
// handler fires "fail"; every handled action completes.
func newActionLifecycle(onEnter map[string]func(ctx context.Context, e *fsm.Event)) *fsm.FSM {
	return fsm.NewFSM(
		"WAITING",
		fsm.Events{
			{Name: "dispatch", Src: []string{"WAITING"}, Dst: "RUNNING"},
			{Name: "complete", Src: []string{"RUNNING"}, Dst: "FINISHED"},
			{Name: "fail", Src: []string{"RUNNING"}, Dst: "FAILED"},
		},
		onEnter,
	)
}

// RunAction executes one action: the matched ActionState transitions
// RUNNING then FINISHED around the dispatch, unknown action types are
// logged and still complete successfully. Callers must hold e.mu; Tick
// is the only caller today, via processInstantActions.
func (e *Engine) RunAction(action protocol.Action, log func(string)) {
	index := e.findActionStateIndex(action.ActionID)
	if index < 0 {
		return
	}

	machine := newActionLifecycle(fsm.Callbacks{
		"enter_RUNNING": func(ctx context.Context, ev *fsm.Event) {
			e.state.ActionStates[index].ActionStatus = protocol.ActionRunning
		},
		"enter_FINISHED": func(ctx context.Context, ev *fsm.Event) {
			e.state.ActionStates[index].ActionStatus = protocol.ActionFinished
		},
	})

	ctx := context.Background()
	_ = machine.Event(ctx, "dispatch")

	switch action.ActionType {
	case "initPosition":
		e.handleInitPosition(action)
	default:
		if log != nil {
			log("Unknown action type: " + action.ActionType)
		}
	}

	_ = machine.Event(ctx, "complete")
}

func (e *Engine) findActionStateIndex(actionID string) int {
	for i, s := range e.state.ActionStates {
		if s.ActionID == actionID {
			return i
		}
	}
	return -1
}

type initPositionParams struct {
	x, y, theta float64
	mapID       string
	lastNodeID  string
}

func (e *Engine) handleInitPosition(action protocol.Action) {
	params := extractInitPositionParams(action)

	e.state.AgvPosition = &protocol.AgvPosition{
		X:                   params.x,
		Y:                   params.y,
		Theta:               params.theta,
		MapID:               params.mapID,
		PositionInitialized: true,
	}
	e.state.LastNodeID = params.lastNodeID
	e.visualization.AgvPosition = copyPosition(e.state.AgvPosition)
}

func extractInitPositionParams(action protocol.Action) initPositionParams {
	return initPositionParams{
		x:          extractFloatParam(action, "x"),
		y:          extractFloatParam(action, "y"),
		theta:      extractFloatParam(action, "theta"),
		mapID:      extractStringParam(action, "mapId"),
		lastNodeID: extractStringParam(action, "lastNodeId"),
	}
}

// extractFloatParam tolerates the value arriving as a JSON string, e.g.
// "10.5", since real fleet masters are inconsistent about this.
func extractFloatParam(action protocol.Action, key string) float64 {
	value, ok := action.Parameter(key)
	if !ok {
		return 0
	}
	if f, isFloat := value.Float(); isFloat {
		return f
	}
	if i, isInt := value.Int(); isInt {
		return float64(i)
	}
	if s, isString := value.String(); isString {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

func extractStringParam(action protocol.Action, key string) string {
	value, ok := action.Parameter(key)
	if !ok {
		return ""
	}
	if s, isString := value.String(); isString {
		return s
	}
	return ""
}
