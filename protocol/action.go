package protocol

import (
	"encoding/json"
	"fmt"
)

// BlockingType regulates whether an action may run during movement and/or
// parallel to other actions.
type BlockingType string

const (
	BlockingNone BlockingType = "NONE"
	BlockingSoft BlockingType = "SOFT"
	BlockingHard BlockingType = "HARD"
)

// UnmarshalJSON rejects any blocking type other than NONE, SOFT or HARD.
func (b *BlockingType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch BlockingType(s) {
	case BlockingNone, BlockingSoft, BlockingHard:
		*b = BlockingType(s)
		return nil
	}
	return fmt.Errorf("protocol: unknown blocking type %q", s)
}

// ActionParameterValue is an untagged sum over integer | float | string,
// matching VDA 5050's actionParameters[].value. Decoding attempts integer,
// then float, then string; encoding preserves whichever variant was set.
type ActionParameterValue struct {
	kind  actionParamKind
	ival  int64
	fval  float64
	sval  string
}

type actionParamKind int

const (
	actionParamInt actionParamKind = iota
	actionParamFloat
	actionParamString
)

func NewIntParameterValue(v int64) ActionParameterValue {
	return ActionParameterValue{kind: actionParamInt, ival: v}
}

func NewFloatParameterValue(v float64) ActionParameterValue {
	return ActionParameterValue{kind: actionParamFloat, fval: v}
}

func NewStringParameterValue(v string) ActionParameterValue {
	return ActionParameterValue{kind: actionParamString, sval: v}
}

// Int reports the integer variant and whether the value actually holds one.
func (v ActionParameterValue) Int() (int64, bool) {
	return v.ival, v.kind == actionParamInt
}

// Float reports the float variant and whether the value actually holds one.
func (v ActionParameterValue) Float() (float64, bool) {
	return v.fval, v.kind == actionParamFloat
}

// String reports the string variant and whether the value actually holds one.
func (v ActionParameterValue) String() (string, bool) {
	return v.sval, v.kind == actionParamString
}

func (v ActionParameterValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case actionParamInt:
		return json.Marshal(v.ival)
	case actionParamFloat:
		return json.Marshal(v.fval)
	case actionParamString:
		return json.Marshal(v.sval)
	default:
		return nil, fmt.Errorf("protocol: action parameter value has no variant set")
	}
}

func (v *ActionParameterValue) UnmarshalJSON(data []byte) error {
	var asInt int64
	if err := json.Unmarshal(data, &asInt); err == nil {
		*v = NewIntParameterValue(asInt)
		return nil
	}
	var asFloat float64
	if err := json.Unmarshal(data, &asFloat); err == nil {
		*v = NewFloatParameterValue(asFloat)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*v = NewStringParameterValue(asString)
		return nil
	}
	return fmt.Errorf("protocol: action parameter value %q is neither int, float, nor string", string(data))
}

// ActionParameter is one key/value pair attached to an Action.
type ActionParameter struct {
	Key   string               `json:"key"`
	Value ActionParameterValue `json:"value"`
}

// Action is a single instruction the vehicle must carry out, either as
// part of a Node/Edge or as an instant action.
type Action struct {
	ActionType        string            `json:"actionType"`
	ActionID          string            `json:"actionId"`
	ActionDescription string            `json:"actionDescription,omitempty"`
	BlockingType      BlockingType      `json:"blockingType"`
	ActionParameters  []ActionParameter `json:"actionParameters,omitempty"`
}

// Parameter looks up a parameter by key.
func (a Action) Parameter(key string) (ActionParameterValue, bool) {
	for _, p := range a.ActionParameters {
		if p.Key == key {
			return p.Value, true
		}
	}
	return ActionParameterValue{}, false
}

// ActionStatus is the lifecycle of an ActionState.
type ActionStatus string

const (
	ActionWaiting      ActionStatus = "WAITING"
	ActionInitializing ActionStatus = "INITIALIZING"
	ActionRunning      ActionStatus = "RUNNING"
	ActionPaused       ActionStatus = "PAUSED"
	ActionFinished     ActionStatus = "FINISHED"
	ActionFailed       ActionStatus = "FAILED"
)

// ActionState is the engine's record of one Action's progress, echoed on
// the State topic until the next accepted order replaces the list.
type ActionState struct {
	ActionID          string       `json:"actionId"`
	ActionType        string       `json:"actionType,omitempty"`
	ActionDescription string       `json:"actionDescription,omitempty"`
	ActionStatus      ActionStatus `json:"actionStatus"`
	ResultDescription string       `json:"resultDescription,omitempty"`
}
