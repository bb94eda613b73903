package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
		isNil bool
	}{
		{input: "debug", want: "debug"},
		{input: "info", want: "info"},
		{input: "warn", want: "warn"},
		{input: "error", want: "error"},
		{input: "verbose", isNil: true},
		{input: "", isNil: true},
	}

	for _, tt := range tests {
		got := parseLevel(tt.input)
		if tt.isNil {
			if got != nil {
				t.Errorf("parseLevel(%q) = %v, want nil", tt.input, got)
			}
			continue
		}
		if got == nil || got.String() != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		l := New("error", pretty)
		l.Info("discarded", String("k", "v"), Bool("b", true), Strings("s", []string{"a"}))
		_ = l.Sync()
	}
}

func TestNewStdLog(t *testing.T) {
	if NewStdLog(New("error", false)) == nil {
		t.Error("NewStdLog() returned nil")
	}
	if NewStdLog(nil) == nil {
		t.Error("NewStdLog(nil) returned nil")
	}
}
