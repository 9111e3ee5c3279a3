package protocol

// OperatingMode is the vehicle's current mode of operation.
type OperatingMode string

const (
	OperatingAutomatic OperatingMode = "AUTOMATIC"
	OperatingSemiautomatic OperatingMode = "SEMIAUTOMATIC"
	OperatingManual        OperatingMode = "MANUAL"
	OperatingService        OperatingMode = "SERVICE"
	OperatingTeaching       OperatingMode = "TEACHIN"
)

// EStop reports the state of the vehicle's emergency stop.
type EStop string

const (
	EStopNone     EStop = "NONE"
	EStopManual   EStop = "MANUAL"
	EStopRemote   EStop = "REMOTE"
	EStopAutoAck  EStop = "AUTOACK"
)

// NodeState is the projection of an accepted Order's Node, retained until
// the vehicle passes it.
type NodeState struct {
	NodeID          string        `json:"nodeId"`
	SequenceID      int           `json:"sequenceId"`
	Released        bool          `json:"released"`
	NodeDescription string        `json:"nodeDescription,omitempty"`
	NodePosition    *NodePosition `json:"nodePosition,omitempty"`
}

// EdgeState is the projection of an accepted Order's Edge, retained until
// the vehicle passes it.
type EdgeState struct {
	EdgeID          string      `json:"edgeId"`
	SequenceID      int         `json:"sequenceId"`
	Released        bool        `json:"released"`
	EdgeDescription string      `json:"edgeDescription,omitempty"`
	Trajectory      *Trajectory `json:"trajectory,omitempty"`
}

// BatteryState reports the vehicle's power reserves.
type BatteryState struct {
	BatteryCharge  float64  `json:"batteryCharge"`
	BatteryVoltage *float64 `json:"batteryVoltage,omitempty"`
	BatteryHealth  *int     `json:"batteryHealth,omitempty"`
	Charging       bool     `json:"charging"`
	Reach          *int     `json:"reach,omitempty"`
}

// SafetyState reports the emergency-stop and safety-field status.
type SafetyState struct {
	EStop          EStop `json:"eStop"`
	FieldViolation bool  `json:"fieldViolation"`
}

// State is the vehicle's periodic status report: current order progress,
// position, action states, and health.
type State struct {
	HeaderID              int           `json:"headerId"`
	Timestamp             string        `json:"timestamp"`
	Version               string        `json:"version"`
	Manufacturer          string        `json:"manufacturer"`
	SerialNumber          string        `json:"serialNumber"`
	OrderID               string        `json:"orderId"`
	OrderUpdateID         int           `json:"orderUpdateId"`
	ZoneSetID             string        `json:"zoneSetId,omitempty"`
	LastNodeID            string        `json:"lastNodeId"`
	LastNodeSequenceID    int           `json:"lastNodeSequenceId"`
	NodeStates            []NodeState   `json:"nodeStates"`
	EdgeStates            []EdgeState   `json:"edgeStates"`
	Driving               bool          `json:"driving"`
	Paused                *bool         `json:"paused,omitempty"`
	NewBaseRequest        *bool         `json:"newBaseRequest,omitempty"`
	OperatingMode         OperatingMode `json:"operatingMode"`
	ActionStates          []ActionState `json:"actionStates"`
	BatteryState          BatteryState  `json:"batteryState"`
	SafetyState           SafetyState   `json:"safetyState"`
	AgvPosition           *AgvPosition  `json:"agvPosition,omitempty"`
	Velocity              *Velocity     `json:"velocity,omitempty"`
	Information           []interface{} `json:"information"`
	Loads                 []interface{} `json:"loads"`
	Errors                []interface{} `json:"errors"`
}
