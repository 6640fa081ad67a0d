package probe_cli

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_err"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/probe_io"
)

func TestWrapRecoversPanic(t *testing.T) {
	runE := Wrap(func(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		panic("boom")
	})

	err := runE(&cobra.Command{Use: "test"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWrapPassesRuntimeContext(t *testing.T) {
	var got *probe_io.RuntimeContext
	runE := Wrap(func(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		got = rc
		return nil
	})

	require.NoError(t, runE(&cobra.Command{Use: "test"}, nil))
	require.NotNil(t, got)
	assert.NotNil(t, got.Ctx)
	assert.NotNil(t, got.Log)
}

func TestWrapKeepsExpectedErrorMarker(t *testing.T) {
	marked := probe_err.NewExpectedError(cerr.New("no host given"))
	runE := Wrap(func(rc *probe_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return marked
	})

	err := runE(&cobra.Command{Use: "test"}, nil)
	require.Error(t, err)
	assert.True(t, probe_err.IsExpectedUserError(err))
}
