package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("APTSCOUT_TEST_DIR", "/var/lib/aptscout")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "absolute unchanged", input: "/etc/aptscout.yaml", expected: "/etc/aptscout.yaml"},
		{name: "tilde", input: "~", expected: home},
		{name: "tilde prefix", input: "~/data/seen.json", expected: filepath.Join(home, "data/seen.json")},
		{name: "env var", input: "$APTSCOUT_TEST_DIR/seen.json", expected: "/var/lib/aptscout/seen.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}
