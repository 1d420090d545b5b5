package queue

import (
	"encoding/json"
	"fmt"
)

// Decode converts a delivered payload into T. In-process deliveries may carry
// T itself; broker deliveries carry JSON.
func Decode[T any](payload any) (T, error) {
	var out T
	switch p := payload.(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	case json.RawMessage:
		err := json.Unmarshal(p, &out)
		return out, err
	case []byte:
		err := json.Unmarshal(p, &out)
		return out, err
	}
	return out, fmt.Errorf("unexpected payload type %T", payload)
}
