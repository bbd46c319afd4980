package xslog

import (
	"log/slog"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "Warn", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvKey, "nonsense")
	if got := FromEnv(); got != Default {
		t.Errorf("FromEnv() = %q, want default %q", got, Default)
	}

	t.Setenv(EnvKey, "warn")
	if got := FromEnv().ToSlog(); got != slog.LevelWarn {
		t.Errorf("FromEnv().ToSlog() = %v, want %v", got, slog.LevelWarn)
	}
}
