package stream

import (
	"encoding/json"
	"fmt"
)

// framePrefix is the fixed token opening every payload line. A frame is
// one prefixed UTF-8 line carrying exactly one JSON object, terminated by
// a blank line. Events are never batched into a shared frame.
const framePrefix = "data: "

// frameBoundary separates the payload line from the blank terminator line.
const frameBoundary = "\n\n"

// Encode serializes one event into a transport frame.
func Encode(event any) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event frame: %w", err)
	}
	frame := make([]byte, 0, len(framePrefix)+len(payload)+len(frameBoundary))
	frame = append(frame, framePrefix...)
	frame = append(frame, payload...)
	frame = append(frame, frameBoundary...)
	return frame, nil
}
