package layout

import "encoding/json"

// MarshalResult serializes a layout for caching and snapshot storage.
func MarshalResult(r *Result) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult deserializes a cached layout.
func UnmarshalResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Scale == 0 {
		r.Scale = 1
	}
	return &r, nil
}
