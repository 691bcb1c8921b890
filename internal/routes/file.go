package routes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a routes override file:
//
//	routes:
//	  - domain: inventory
//	    operation: update
//	    service: inventory
//	    method: PUT
//	    path: /api/inventories/{id}
type File struct {
	Routes []Route `yaml:"routes"`
}

// LoadFile reads a YAML routes file. An empty path yields no overrides.
func LoadFile(path string) ([]Route, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a routes document. Unknown fields are rejected.
func Parse(raw []byte) ([]Route, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	return f.Routes, nil
}

// Merge overlays overrides onto base by key. Overrides for unknown keys are
// appended. Blank fields in an override keep the base value.
func Merge(base, overrides []Route) []Route {
	out := make([]Route, len(base))
	copy(out, base)
	idx := make(map[Key]int, len(out))
	for i, r := range out {
		idx[r.Key()] = i
	}
	for _, o := range overrides {
		i, ok := idx[o.Key()]
		if !ok {
			idx[o.Key()] = len(out)
			out = append(out, o)
			continue
		}
		cur := out[i]
		if o.Service != "" {
			cur.Service = o.Service
		}
		if o.Method != "" {
			cur.Method = o.Method
		}
		if o.Path != "" {
			cur.Path = o.Path
		}
		out[i] = cur
	}
	return out
}

// Load builds the registry from the defaults plus an optional overrides file.
func Load(path string) (*Registry, error) {
	overrides, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(Merge(Defaults(), overrides)...)
}
