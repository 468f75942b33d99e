package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 65536, cfg.IOChunkSize)
	assert.Equal(t, 9, cfg.FlateCompression)
	assert.True(t, cfg.PredictorStrict)
	assert.True(t, cfg.AutoCorrect)
}

func TestDefaultCopiesAreIndependent(t *testing.T) {
	a := Default()
	b := Default()
	a.IOChunkSize = 1
	a.FilterMap = map[string]string{"X": "Y"}
	assert.Equal(t, 65536, b.IOChunkSize)
	assert.Nil(t, b.FilterMap)
}
