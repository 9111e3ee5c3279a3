package engine

import (
	"math/rand"
	"sync"
	"time"

	"vda5050-simulator/protocol"
)

// Engine owns one vehicle's Connection, State and Visualization buffers,
// its currently accepted Order and InstantActions, and the action-timing
// clock that gates motion. All mutation happens through its exported
// methods, each of which takes mu except RunAction, whose caller must
// already hold it; the zero value is not usable, construct with New.
// Callers (the adapter's subscriber/publisher goroutines, the status
// API) never need their own lock around an engine call.
type Engine struct {
	identity Identity
	settings Settings

	mu sync.Mutex

	connection    protocol.Connection
	state         protocol.State
	visualization protocol.Visualization

	order          *protocol.Order
	instantActions *protocol.InstantActions

	actionStartTime time.Time
	actionRunning   bool
}

// New builds an engine with a CONNECTIONBROKEN connection, an empty
// State at a random position in [-2.5, 2.5]^2 (uninitialized), and a
// Visualization mirroring that position. Timestamps are stamped at
// construction time.
func New(identity Identity, settings Settings) *Engine {
	e := &Engine{identity: identity, settings: settings}

	e.connection = protocol.Connection{
		HeaderID:        0,
		Timestamp:       protocol.Timestamp(),
		Version:         identity.VDAFullVersion,
		Manufacturer:    identity.Manufacturer,
		SerialNumber:    identity.SerialNumber,
		ConnectionState: protocol.ConnectionConnectionBroken,
	}

	randomX := rand.Float64()*5.0 - 2.5
	randomY := rand.Float64()*5.0 - 2.5

	position := protocol.AgvPosition{
		X:                   randomX,
		Y:                   randomY,
		Theta:               0,
		MapID:               identity.MapID,
		PositionInitialized: false,
	}

	e.state = protocol.State{
		HeaderID:      0,
		Timestamp:     protocol.Timestamp(),
		Version:       identity.VDAFullVersion,
		Manufacturer:  identity.Manufacturer,
		SerialNumber:  identity.SerialNumber,
		Driving:       false,
		OperatingMode: protocol.OperatingAutomatic,
		NodeStates:    []protocol.NodeState{},
		EdgeStates:    []protocol.EdgeState{},
		LastNodeID:    "",
		OrderID:       "",
		OrderUpdateID: 0,
		ActionStates:  []protocol.ActionState{},
		Information:   []interface{}{},
		Loads:         []interface{}{},
		Errors:        []interface{}{},
		BatteryState: protocol.BatteryState{
			BatteryCharge: 100,
			Charging:      false,
		},
		SafetyState: protocol.SafetyState{
			EStop:          protocol.EStopNone,
			FieldViolation: false,
		},
		AgvPosition: &position,
	}

	e.visualization = protocol.Visualization{
		HeaderID:     0,
		Timestamp:    protocol.Timestamp(),
		Version:      identity.VDAFullVersion,
		Manufacturer: identity.Manufacturer,
		SerialNumber: identity.SerialNumber,
		AgvPosition:  copyPosition(&position),
	}

	return e
}

func copyPosition(p *protocol.AgvPosition) *protocol.AgvPosition {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// IsReadyForNewOrder reports whether the vehicle has no outstanding
// nodes or edges and has had its position initialized.
func (e *Engine) IsReadyForNewOrder() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isReadyForNewOrder()
}

// isReadyForNewOrder is the lock-free core of IsReadyForNewOrder, for
// callers (handleNewOrder) that already hold e.mu.
func (e *Engine) isReadyForNewOrder() bool {
	return len(e.state.NodeStates) == 0 &&
		len(e.state.EdgeStates) == 0 &&
		e.state.AgvPosition != nil &&
		e.state.AgvPosition.PositionInitialized
}

// SnapshotConnection bumps the connection header and returns the
// current Connection payload for the adapter to publish.
func (e *Engine) SnapshotConnection() protocol.Connection {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connection.HeaderID++
	e.connection.Timestamp = protocol.Timestamp()
	return e.connection
}

// InitialConnection returns the engine's current Connection payload
// without bumping it. Until MarkOnline and SnapshotConnection run this
// is the starting payload (CONNECTIONBROKEN, header_id 0), which the
// adapter uses for its first publish and its broker will-message.
func (e *Engine) InitialConnection() protocol.Connection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connection
}

// SnapshotState bumps the state header and returns a copy of the
// current State payload for the adapter to publish.
func (e *Engine) SnapshotState() protocol.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.HeaderID++
	e.state.Timestamp = protocol.Timestamp()
	return e.state
}

// PeekState returns the current State payload without bumping its
// header id, for read-only inspection outside the publish cadence
// (serialized against ticks the same as every other accessor).
func (e *Engine) PeekState() protocol.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SnapshotVisualization bumps the visualization header and returns a
// copy of the current Visualization payload for the adapter to publish.
func (e *Engine) SnapshotVisualization() protocol.Visualization {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visualization.HeaderID++
	e.visualization.Timestamp = protocol.Timestamp()
	return e.visualization
}

// MarkOnline transitions the connection to ONLINE without going
// through a snapshot (used by the adapter's connection lifecycle,
// which publishes the broken state first).
func (e *Engine) MarkOnline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connection.ConnectionState = protocol.ConnectionOnline
}

// Identity returns the engine's immutable vehicle identity.
func (e *Engine) Identity() Identity {
	return e.identity
}

// Settings returns the engine's tunable settings.
func (e *Engine) Settings() Settings {
	return e.settings
}
