package deps

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	dir, err := os.MkdirTemp("", "deps_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	log, err := logger.NewLogger(dir)
	require.NoError(t, err)
	t.Cleanup(log.Close)
	return log
}

func TestCheck_AllPresent(t *testing.T) {
	probes := []Probe{
		{Name: "alpha", Check: func() error { return nil }},
		{Name: "beta", Check: func() error { return nil }},
	}
	assert.NoError(t, Check(probes, newTestLogger(t)))
}

func TestCheck_MissingDependencyFails(t *testing.T) {
	probes := []Probe{
		{Name: "alpha", Check: func() error { return nil }},
		{Name: "beta", Check: func() error { return fmt.Errorf("library not importable") }},
	}

	err := Check(probes, newTestLogger(t))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDependency))
	assert.Contains(t, err.Error(), "beta")
}

func TestZXingSelfTest(t *testing.T) {
	assert.NoError(t, checkZXing())
}

func TestExcelSelfTest(t *testing.T) {
	assert.NoError(t, checkExcel())
}

func TestSQLiteDriverRegistered(t *testing.T) {
	assert.NoError(t, checkSQLite())
}

func TestExportDirProbe(t *testing.T) {
	dir, err := os.MkdirTemp("", "deps_export_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	assert.NoError(t, checkExportDir(dir))
}
