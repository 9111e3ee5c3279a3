package protocol

import "time"

// timestampLayout matches VDA 5050's ISO-8601 UTC millisecond format,
// e.g. 2017-04-15T11:40:03.120Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp returns the current UTC time formatted the way every
// outbound VDA 5050 message carries it.
func Timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}
