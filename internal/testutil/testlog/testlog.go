package testlog

import (
	"testing"

	"github.com/danmuck/bcp/internal/bcplog"
)

// Start configures the test logging profile and emits a marker line naming
// the running test, so interleaved parallel test output stays attributable.
func Start(t *testing.T) {
	t.Helper()
	logger := bcplog.ConfigureTests()
	logger.Info().Str("test", t.Name()).Msg("test start")
}
