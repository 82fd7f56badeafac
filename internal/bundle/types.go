// Package bundle stores generated lighting maps for many sprites in a single
// SQLite database.
package bundle

import (
	"errors"
	"strconv"
)

// ErrNotFound is returned when a sprite map is not stored in the bundle.
var ErrNotFound = errors.New("map not found")

// Metadata contains bundle-level metadata fields.
type Metadata struct {
	Name        string // Human-readable bundle identifier
	Format      string // Map image encoding (png)
	Description string // Human-readable description
	Version     string // Version string
	Config      string // YAML dump of the generation settings
	Tileable    bool
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Config != "" {
		result["config"] = m.Config
	}
	if m.Tileable {
		result["tileable"] = strconv.FormatBool(m.Tileable)
	}

	return result
}

// fromMap is the inverse of ToMap. Unknown keys are ignored.
func fromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Format:      values["format"],
		Description: values["description"],
		Version:     values["version"],
		Config:      values["config"],
	}
	if v, ok := values["tileable"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			meta.Tileable = b
		}
	}
	return meta
}

// Entry is a single encoded map to be written.
type Entry struct {
	Sprite string
	Kind   string
	Data   []byte // PNG data (gzip-compressed before storage)
	Width  int
	Height int
}
