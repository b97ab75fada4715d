package buildsys

import (
	"context"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/jcbuild/pkgs/sdk"
)

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "HOME=/root", "BROKEN"}
	got := mergeEnv(base, map[string]string{"HOME": "/tmp", "JC_HOME": "/sdk"})
	want := []string{"HOME=/tmp", "JC_HOME=/sdk", "PATH=/bin"}
	if !slices.Equal(got, want) {
		t.Errorf("mergeEnv = %v, want %v", got, want)
	}
}

func TestTail(t *testing.T) {
	if got := tail("a\nb\nc\n", 2); got != "b\nc" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("  \n", 3); got != "" {
		t.Errorf("tail of blank = %q", got)
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath([]string{"a"}); got != "a" {
		t.Errorf("JoinPath = %q", got)
	}
	if got := JoinPath(nil); got != "" {
		t.Errorf("JoinPath(nil) = %q", got)
	}
}

func TestRun(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	t.Run("success", func(t *testing.T) {
		var out strings.Builder
		r := Runner{Stdout: &out, Env: map[string]string{"JCBUILD_TEST": "hello"}}
		if err := r.Run(context.Background(), sh, "-c", "echo $JCBUILD_TEST"); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if strings.TrimSpace(out.String()) != "hello" {
			t.Errorf("stdout = %q", out.String())
		}
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		var r Runner
		err := r.Run(context.Background(), sh, "-c", "echo broken class >&2; exit 3")
		if err == nil {
			t.Fatal("expected failure")
		}
		if !strings.Contains(err.Error(), "broken class") {
			t.Errorf("error = %q, want stderr tail", err)
		}
		if !strings.HasPrefix(err.Error(), "sh: ") {
			t.Errorf("error = %q, want tool name prefix", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var r Runner
		if err := r.Run(ctx, sh, "-c", "sleep 5"); err != context.Canceled {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestKitEnv(t *testing.T) {
	if env := KitEnv(&sdk.SDK{Version: sdk.V222, Root: "/jc222"}); env != nil {
		t.Errorf("KitEnv(2.2.2) = %v, want nil", env)
	}
	if env := KitEnv(nil); env != nil {
		t.Errorf("KitEnv(nil) = %v, want nil", env)
	}
	env := KitEnv(&sdk.SDK{Version: sdk.V310, Root: "/jc310"})
	if env["JC_HOME"] != "/jc310" {
		t.Errorf("KitEnv(3.1.0) = %v", env)
	}
}
