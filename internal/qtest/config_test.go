package qtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "qtest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_LoadConfigKeepsDefaultsForMissingFields(t *testing.T) {
	path := writeConfig(t, `{"verbose": true, "malloc_fail_percent": 10}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	expected := DefaultConfig()
	expected.Verbose = true
	expected.MallocFailPercent = 10
	assert.Equal(t, expected, cfg)
}

func Test_LoadConfigErrors(t *testing.T) {
	testcases := []struct {
		name string
		body string
	}{
		{"malformed", `{"verbose": `},
		{"percent out of range", `{"malloc_fail_percent": 101}`},
		{"zero length", `{"string_length": 0}`},
		{"zero error limit", `{"error_limit": 0}`},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func Test_ValidateCombinesProblems(t *testing.T) {
	cfg := Config{MallocFailPercent: -1}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "malloc_fail_percent")
	assert.Contains(t, err.Error(), "string_length")
	assert.Contains(t, err.Error(), "error_limit")
}
