package meta

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kipr/kipr-scratch/internal/validator"
)

// ParseBlacklist validates and decodes a {"module": ["function", ...]} document.
func ParseBlacklist(data []byte) (Blacklist, error) {
	if err := validator.ValidateFile(validator.Blacklist, data); err != nil {
		return nil, err
	}
	var b Blacklist
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode blacklist: %w", err)
	}
	return b, nil
}

// LoadBlacklist reads the blacklist at path.
func LoadBlacklist(path string) (Blacklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blacklist %s: %w", path, err)
	}
	b, err := ParseBlacklist(data)
	if err != nil {
		return nil, fmt.Errorf("load blacklist %s: %w", path, err)
	}
	return b, nil
}
