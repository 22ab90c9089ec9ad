package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{"version", []string{"version"}, 0},
		{"invalid retries", []string{"generate", "--retries=-1"}, 1},
		{"unknown command", []string{"nope"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedExit, run(tt.args))
		})
	}
}
