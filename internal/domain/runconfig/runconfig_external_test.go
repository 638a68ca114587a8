package runconfig_test

import (
	"testing"

	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/domain/runconfig"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsEmptySpec(t *testing.T) {
	var c runconfig.Config
	require.ErrorIs(t, c.Validate(), runconfig.ErrMissingSpec)
}

func TestValidateAcceptsNonEmptySpec(t *testing.T) {
	c := runconfig.Config{Spec: catalog.Spec{GlobalFiles: []catalog.GlobalFile{{Name: "stat"}}}}
	require.NoError(t, c.Validate())
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	var c runconfig.Config
	c = c.WithDefaults()
	require.Equal(t, runconfig.DefaultSamplePeriod, c.SamplePeriod)
	require.EqualValues(t, runconfig.DefaultFlushLimit, c.FlushLimitBytes)
	require.Equal(t, "result", c.OutputFileName)
	require.Equal(t, ".", c.LogDir)
}

func TestWithDefaultsPreservesExplicitValues(t *testing.T) {
	c := runconfig.Config{OutputFileName: "run1", LogDir: "/tmp/x"}
	c = c.WithDefaults()
	require.Equal(t, "run1", c.OutputFileName)
	require.Equal(t, "/tmp/x", c.LogDir)
}
