package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaFromTXT(t *testing.T) {
	assert.Equal(t, "MAIN", arenaFromTXT([]string{"version=1", "arena=MAIN"}))
	assert.Empty(t, arenaFromTXT([]string{"version=1"}))
	assert.Empty(t, arenaFromTXT(nil))
}
