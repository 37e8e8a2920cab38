package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		debug bool
		want  zapcore.Level
	}{
		{false, zapcore.InfoLevel},
		{true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.debug)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", tt.debug, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("New(%v): level %s should be enabled", tt.debug, tt.want)
		}
		if tt.want == zapcore.InfoLevel && logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("debug should be disabled by default")
		}
		_ = logger.Sync()
	}
}
