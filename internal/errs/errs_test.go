package errs

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestConfigErrorMessage(t *testing.T) {
	err := Helping("version", "invalid package version: %s", "1.2.3")
	got := err.Error()
	if !strings.HasPrefix(got, "version: invalid package version: 1.2.3") {
		t.Errorf("Error() = %q", got)
	}
	if !strings.HasSuffix(got, DocHint) {
		t.Errorf("Error() = %q, want suffix %q", got, DocHint)
	}

	plain := Config("", "no hint")
	if plain.Error() != "no hint" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "no hint")
	}
}

func TestKindsUnwrap(t *testing.T) {
	var err error = IO("copy", "/tmp/x", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("IOError should unwrap to its cause")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Path != "/tmp/x" {
		t.Errorf("errors.As IOError = %v", ioErr)
	}

	err = Tool("converter", errors.New("exit status 1"))
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Tool != "converter" {
		t.Errorf("errors.As ToolError = %v", toolErr)
	}

	if Tool("x", nil) != nil || IO("x", "y", nil) != nil {
		t.Error("nil cause should yield nil error")
	}

	cause := errors.New("boom")
	cfg := Config("targetsdk", "not found").WithCause(cause)
	if !errors.Is(cfg, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
}
