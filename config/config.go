// This file is part of pl0 - https://github.com/db47h/pl0
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the optional .pl0rc YAML configuration file that
// controls VM resource limits and terminal color output. The file is
// validated against an embedded JSON Schema before being unmarshaled, so
// a typo in a field name is reported before it can silently fall back to
// a zero value.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// schemaDoc is the JSON Schema every loaded configuration is validated
// against. It is embedded as a literal rather than a separate file since
// it never needs to vary independently of this package's Config type.
const schemaDoc = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"stackSize": {"type": "integer", "minimum": 64},
		"maxCallDepth": {"type": "integer", "minimum": 1},
		"maxSteps": {"type": "integer", "minimum": 0},
		"color": {"type": "boolean"}
	}
}`

// Config holds the tunables read from a .pl0rc file.
type Config struct {
	StackSize    int  `yaml:"stackSize"`
	MaxCallDepth int  `yaml:"maxCallDepth"`
	MaxSteps     int  `yaml:"maxSteps"`
	Color        bool `yaml:"color"`
}

// Default returns the configuration used when no .pl0rc file is present.
// MaxSteps defaults to 0 (no limit): it's a supplementary safety net for
// runaway loops, not a default constraint on every run.
func Default() Config {
	return Config{StackSize: 4096, MaxCallDepth: 256, MaxSteps: 0, Color: true}
}

// Load reads and validates a YAML configuration file at path, merging it
// over Default(). Fields absent from the YAML keep their default value,
// since jsonschema validation runs against the raw YAML (converted to a
// plain map) before unmarshaling, not against the merged struct.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading %s", path)
	}

	schema, err := jsonschema.CompileString("pl0rc.json", schemaDoc)
	if err != nil {
		return cfg, errors.Wrap(err, "compiling configuration schema")
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", path)
	}
	raw = normalizeYAML(raw)
	if err := schema.Validate(raw); err != nil {
		return cfg, errors.Wrapf(err, "validating %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "decoding %s", path)
	}
	return cfg, nil
}

// normalizeYAML converts the map[string]interface{} and nested structures
// that yaml.v3 produces into the map[string]interface{}/[]interface{}
// shapes jsonschema expects; yaml.v3 already decodes plain mappings this
// way, so this is a light recursive pass-through used mainly to guard
// against future yaml.v3 changes to its default decoding target type.
func normalizeYAML(v interface{}) interface{} {
	switch n := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(n))
		for k, val := range n {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, val := range n {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

// LoadOrDefault behaves like Load, but returns Default() without error
// when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}
