// Package errs defines the error kinds reported by a build run.
//
// Every kind aborts the run. Callers tell them apart with errors.As.
package errs

import (
	"fmt"
	"strings"
)

// DocHint is appended to configuration errors caused by common mistakes in a
// build description.
const DocHint = "PLEASE READ https://github.com/martinpaljak/ant-javacard#syntax"

// ConfigError reports a bad, missing or contradictory build setting, or an
// unusable SDK pairing.
type ConfigError struct {
	Field string // offending setting, may be empty
	Msg   string
	Hint  string // remediation or documentation pointer, may be empty
	Cause error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	if e.Field != "" {
		sb.WriteString(e.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Msg)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	if e.Hint != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Hint)
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Config returns a ConfigError for field.
func Config(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Helping returns a ConfigError carrying DocHint.
func Helping(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...), Hint: DocHint}
}

// WithCause sets the underlying error.
func (e *ConfigError) WithCause(err error) *ConfigError {
	e.Cause = err
	return e
}

// WithHint replaces the hint.
func (e *ConfigError) WithHint(hint string) *ConfigError {
	e.Hint = hint
	return e
}

// ToolError reports a failed external tool invocation.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Tool wraps err as a failure of tool. A nil err yields nil.
func Tool(tool string, err error) error {
	if err == nil {
		return nil
	}
	return &ToolError{Tool: tool, Err: err}
}

// ArtifactError reports an output that a tool should have produced but did
// not.
type ArtifactError struct {
	Path string
	Msg  string
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s: %s", e.Msg, e.Path)
}

// Artifact returns an ArtifactError for path.
func Artifact(path, format string, args ...any) error {
	return &ArtifactError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// IOError reports a filesystem failure while collecting outputs or cleaning up.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IO wraps err with the operation and path. A nil err yields nil.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
