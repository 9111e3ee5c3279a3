package protocol

import "strings"

// Topics are the five per-vehicle MQTT topic names derived from identity
// and a configured vda_interface prefix.
type Topics struct {
	Connection     string
	State          string
	Visualization  string
	Order          string
	InstantActions string
}

// BuildTopics constructs the topic set
// "<prefix>/<vdaVersion>/<manufacturer>/<serialNumber>/<suffix>".
func BuildTopics(prefix, vdaVersion, manufacturer, serialNumber string) Topics {
	base := strings.Join([]string{prefix, vdaVersion, manufacturer, serialNumber}, "/")
	return Topics{
		Connection:     base + "/connection",
		State:          base + "/state",
		Visualization:  base + "/visualization",
		Order:          base + "/order",
		InstantActions: base + "/instantActions",
	}
}

// TopicType returns the characters after the last '/', i.e. the message
// suffix a subscriber dispatches on.
func TopicType(topic string) string {
	if idx := strings.LastIndex(topic, "/"); idx >= 0 {
		return topic[idx+1:]
	}
	return topic
}
