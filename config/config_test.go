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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/pl0/config"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pl0rc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 4096, cfg.StackSize)
	assert.Equal(t, 256, cfg.MaxCallDepth)
	assert.Equal(t, 0, cfg.MaxSteps)
	assert.True(t, cfg.Color)
}

func TestLoad_validConfigOverridesDefaults(t *testing.T) {
	path := writeFile(t, "stackSize: 8192\nmaxCallDepth: 64\ncolor: false\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.StackSize)
	assert.Equal(t, 64, cfg.MaxCallDepth)
	assert.False(t, cfg.Color)
	// maxSteps was absent from the file: it keeps Default()'s value.
	assert.Equal(t, 0, cfg.MaxSteps)
}

func TestLoad_unknownFieldRejectedBySchema(t *testing.T) {
	path := writeFile(t, "stacksize: 8192\n") // wrong case: not the declared property name
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_wrongTypeRejectedBySchema(t *testing.T) {
	path := writeFile(t, "stackSize: not-a-number\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_belowMinimumRejectedBySchema(t *testing.T) {
	path := writeFile(t, "maxCallDepth: 0\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_missingFileIsAnError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.pl0rc"))
	assert.Error(t, err)
}

func TestLoadOrDefault_missingFileReturnsDefault(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "nope.pl0rc"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOrDefault_existingFileIsLoaded(t *testing.T) {
	path := writeFile(t, "color: false\n")
	cfg, err := config.LoadOrDefault(path)
	require.NoError(t, err)
	assert.False(t, cfg.Color)
}
