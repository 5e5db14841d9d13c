package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meridian-admin/meridian/internal/resolver"
)

// access map file format: a list of entries mapping a resource/action
// pair to the permission ids that grant it. The mapping is maintained by
// the presentation layer; the core only consumes it.
type accessEntry struct {
	Resource    string  `json:"resource"`
	Action      string  `json:"action"`
	Permissions []int64 `json:"permissions"`
}

// LoadAccessMap reads the (resource, action) to permission mapping from
// a JSON file. An empty path yields an empty map, which denies every
// capability query.
func LoadAccessMap(path string) (resolver.AccessMap, error) {
	access := resolver.AccessMap{}
	if path == "" {
		return access, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read access map: %w", err)
	}
	var entries []accessEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cli: parse access map: %w", err)
	}
	for _, entry := range entries {
		key := resolver.ActionKey{Resource: entry.Resource, Action: entry.Action}
		access[key] = append(access[key], entry.Permissions...)
	}
	return access, nil
}
