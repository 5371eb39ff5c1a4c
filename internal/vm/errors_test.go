package vm

import "testing"

func TestShutdownMethodString(t *testing.T) {
	tests := []struct {
		method ShutdownMethod
		want   string
	}{
		{ShutdownNone, "none"},
		{ShutdownGraceful, "graceful"},
		{ShutdownControlSocket, "control-socket"},
		{ShutdownSignal, "signal"},
		{ShutdownKilled, "killed"},
		{ShutdownMethod(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("ShutdownMethod(%d).String() = %q, want %q", tt.method, got, tt.want)
		}
	}
}
