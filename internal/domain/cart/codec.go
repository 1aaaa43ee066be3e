package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// The persisted representation is one JSON blob per cart key:
//
//	{"version":1,"entries":["42","42","7"]}
//
// Readers must also accept the legacy bare entry array (version 0) so carts
// persisted before versioning still parse; they're rewritten as the current
// version on the next save.

type blob struct {
	Version int      `json:"version"`
	Entries []string `json:"entries"`
}

// EncodeBlob serializes the entry sequence with its schema version tag.
func EncodeBlob(c *Cart) ([]byte, error) {
	if c == nil {
		return nil, errors.New("cart: encode nil cart")
	}
	return json.Marshal(blob{
		Version: c.Version,
		Entries: append([]string{}, c.Entries...),
	})
}

// DecodeBlob accepts the current versioned object or a legacy bare array.
func DecodeBlob(data []byte) (version int, entries []string, err error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return 0, []string{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var legacy []string
		if err := json.Unmarshal(data, &legacy); err != nil {
			return 0, nil, fmt.Errorf("cart: decode legacy blob: %w", err)
		}
		if legacy == nil {
			legacy = []string{}
		}
		return 0, legacy, nil
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return 0, nil, fmt.Errorf("cart: decode blob: %w", err)
	}
	if b.Entries == nil {
		b.Entries = []string{}
	}
	return b.Version, b.Entries, nil
}
