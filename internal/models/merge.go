package models

import (
	"encoding/json"
	"fmt"
)

// MergeJSON shallow-merges the update JSON object over the base JSON object.
// Keys present in update win; keys absent from update are preserved from
// base, including keys the client has no typed field for. A field the server
// stopped returning therefore keeps its last known value until the server
// sends it again (explicit nulls do overwrite).
func MergeJSON(base, update []byte) ([]byte, error) {
	merged := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, fmt.Errorf("parse base object: %w", err)
		}
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(update, &patch); err != nil {
		return nil, fmt.Errorf("parse update object: %w", err)
	}
	for k, v := range patch {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// DecodeUser parses a raw session/profile object into a User.
func DecodeUser(raw []byte) (User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, fmt.Errorf("parse user object: %w", err)
	}
	return u, nil
}
