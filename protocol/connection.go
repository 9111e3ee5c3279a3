package protocol

// ConnectionState reports whether the vehicle is reachable on the broker.
type ConnectionState string

const (
	ConnectionOnline           ConnectionState = "ONLINE"
	ConnectionOffline          ConnectionState = "OFFLINE"
	ConnectionConnectionBroken ConnectionState = "CONNECTIONBROKEN"
)

// Connection reports the vehicle's broker reachability. The simulator
// publishes it without the retain flag: CONNECTIONBROKEN first and as
// the will payload, then ONLINE once connected. OFFLINE is not
// published on shutdown.
type Connection struct {
	HeaderID        int             `json:"headerId"`
	Timestamp       string          `json:"timestamp"`
	Version         string          `json:"version"`
	Manufacturer    string          `json:"manufacturer"`
	SerialNumber    string          `json:"serialNumber"`
	ConnectionState ConnectionState `json:"connectionState"`
}
