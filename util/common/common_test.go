package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512.00B", FormatBytes(512))
	assert.Equal(t, "1.50KB", FormatBytes(1536))
	assert.Equal(t, "2.00GB", FormatBytes(2<<30))
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil, nil))

	a := errors.New("a")
	err := Combine(nil, a)
	assert.ErrorIs(t, err, a)
}

func TestRecover(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recover("job failed")
		panic("boom")
	})
}
