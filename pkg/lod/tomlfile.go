package lod

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type tableFile struct {
	Threshold []Threshold `toml:"threshold"`
}

// LoadTable reads a threshold table from a TOML file of the form
//
//	[[threshold]]
//	zoom_ceil   = 0.5
//	min_karma   = 0
//	min_invites = 0
//
//	[[threshold]]
//	zoom_ceil   = inf
//	min_karma   = 200
//	min_invites = 12
//
// and validates it.
func LoadTable(path string) (Table, error) {
	var file tableFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("reading threshold table %s: %w", path, err)
	}
	table := Table(file.Threshold)
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("threshold table %s: %w", path, err)
	}
	return table, nil
}
