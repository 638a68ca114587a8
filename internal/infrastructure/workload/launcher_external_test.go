package workload_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kodflow/syswit/internal/infrastructure/workload"
	"github.com/stretchr/testify/require"
)

func TestLaunchRejectsEmptyCommand(t *testing.T) {
	_, err := workload.Launch(context.Background(), "   ", "", false)
	require.Error(t, err)
}

func TestLaunchRunsCommandAndReportsExit(t *testing.T) {
	h, err := workload.Launch(context.Background(), "true", "", true)
	require.NoError(t, err)
	require.NotZero(t, h.PID)

	select {
	case exitErr := <-h.Wait():
		require.NoError(t, exitErr)
	case <-time.After(5 * time.Second):
		t.Fatal("workload did not exit in time")
	}
}

func TestLaunchCapturesOutputToFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "workload.output")
	h, err := workload.Launch(context.Background(), "echo hello", outputPath, false)
	require.NoError(t, err)

	<-h.Wait()

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestKillTerminatesProcessGroup(t *testing.T) {
	h, err := workload.Launch(context.Background(), "sleep 30", "", true)
	require.NoError(t, err)

	require.NoError(t, h.Kill())

	select {
	case <-h.Wait():
	case <-time.After(5 * time.Second):
		t.Fatal("killed workload did not exit in time")
	}
}
