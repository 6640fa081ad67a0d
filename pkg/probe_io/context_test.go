package probe_io

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePanicConvertsToError(t *testing.T) {
	rc := NewContext(context.Background(), "test")

	var err error
	func() {
		defer rc.HandlePanic(&err)
		panic("something went sideways")
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "something went sideways")
}

func TestHandlePanicNoopWithoutPanic(t *testing.T) {
	rc := NewContext(context.Background(), "test")

	var err error
	func() {
		defer rc.HandlePanic(&err)
	}()

	assert.NoError(t, err)
}
