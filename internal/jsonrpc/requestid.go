package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// RequestID is a JSON-RPC ID, which may be a string or a number on the wire.
// A nil *RequestID marks a notification.
type RequestID struct {
	value any
}

// NewRequestID wraps a string or numeric value as a request ID.
func NewRequestID(value any) *RequestID {
	switch value.(type) {
	case string, int, int32, int64, float64:
		return &RequestID{value: value}
	default:
		return &RequestID{}
	}
}

// IsNil reports whether the ID is absent.
func (id *RequestID) IsNil() bool { return id == nil || id.value == nil }

// String renders the ID for logging. Numeric IDs keep their wire form.
func (id *RequestID) String() string {
	if id.IsNil() {
		return ""
	}
	if s, ok := id.value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", id.value)
}

func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

func (id *RequestID) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		// Integral IDs round-trip as int64 so String() has no decimal point.
		if num == float64(int64(num)) {
			id.value = int64(num)
		} else {
			id.value = num
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		id.value = str
		return nil
	}
	return fmt.Errorf("request id must be a string or number, got %s", string(data))
}
