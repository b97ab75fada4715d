package buildsys

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/goplus/jcbuild/pkgs/sdk"
)

// Runner runs external tools.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    map[string]string
}

// Run starts bin with args and waits for it. Output is streamed to the
// runner's writers. A failure carries the tail of the tool's stderr.
func (r *Runner) Run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stdout = orDiscard(r.Stdout)
	cmd.Stderr = io.MultiWriter(orDiscard(r.Stderr), &stderr)
	if len(r.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), r.Env)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := tail(stderr.String(), 10); msg != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(bin), err, msg)
		}
		return fmt.Errorf("%s: %w", filepath.Base(bin), err)
	}
	return nil
}

// Java returns the java launcher, preferring $JAVA_HOME/bin/java.
func Java() string {
	return jdkTool("java")
}

// Javac returns the compiler, preferring $JAVA_HOME/bin/javac.
func Javac() string {
	return jdkTool("javac")
}

func jdkTool(name string) string {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		bin := filepath.Join(home, "bin", name)
		if runtime.GOOS == "windows" {
			bin += ".exe"
		}
		if _, err := os.Stat(bin); err == nil {
			return bin
		}
	}
	return name
}

// KitEnv returns the environment the tools of kit run with. 3.x tools find
// their SDK through JC_HOME, whatever the caller's environment says.
func KitEnv(kit *sdk.SDK) map[string]string {
	if kit == nil || !kit.Version.IsV3() {
		return nil
	}
	return map[string]string{"JC_HOME": kit.Root}
}

// JoinPath joins entries with the host path list separator.
func JoinPath(entries []string) string {
	return strings.Join(entries, string(os.PathListSeparator))
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
