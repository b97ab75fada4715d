package javac

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/jcbuild/pkgs/buildsys"
)

func writeSources(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("class X {}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	var out []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestSelectSources(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root,
		"Top.java",
		"com/example/App.java",
		"com/example/test/AppTest.java",
		"com/example/README.md",
	)

	tests := []struct {
		name     string
		includes []string
		excludes []string
		want     []string
	}{
		{"all", nil, nil, []string{"Top.java", "com/example/App.java", "com/example/test/AppTest.java"}},
		{"include subtree", []string{"com/"}, nil, []string{"com/example/App.java", "com/example/test/AppTest.java"}},
		{"double star", []string{"**/App*.java"}, nil, []string{"com/example/App.java", "com/example/test/AppTest.java"}},
		{"root match", []string{"**/Top.java"}, nil, []string{"Top.java"}},
		{"exclude", nil, []string{"**/test/**"}, []string{"Top.java", "com/example/App.java"}},
		{"single star stays in dir", []string{"com/*/*.java"}, nil, []string{"com/example/App.java"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := SelectSources([]string{root}, tt.includes, tt.excludes)
			if err != nil {
				t.Fatalf("SelectSources: %v", err)
			}
			if got := rel(t, root, files); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectSourcesEmpty(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, "a/A.java")
	_, err := SelectSources([]string{root}, []string{"b/**"}, nil)
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("error = %v, want ErrNoSources", err)
	}
	if _, err := SelectSources([]string{filepath.Join(root, "missing")}, nil, nil); err == nil {
		t.Fatal("missing root should fail")
	}
}

func TestSplitPatterns(t *testing.T) {
	got := SplitPatterns("**/*.java, test/**  foo/Bar.java")
	want := []string{"**/*.java", "test/**", "foo/Bar.java"}
	if !slices.Equal(got, want) {
		t.Errorf("SplitPatterns = %v, want %v", got, want)
	}
	if len(SplitPatterns("")) != 0 {
		t.Error("empty list should split to nothing")
	}
}

func TestArgs(t *testing.T) {
	req := &buildsys.CompileRequest{
		Dest:          "/out",
		JavaVersion:   "1.6",
		Classpath:     []string{"/sdk/lib/api_classic.jar", "/libs/gp.jar"},
		Processor:     StringConstantsProcessor,
		ProcessorPath: []string{"/sdk/lib/tools.jar"},
	}
	args := strings.Join(Args(req), " ")
	for _, want := range []string{
		"-d /out",
		"-source 1.6 -target 1.6",
		"-processor " + StringConstantsProcessor,
		"-processorpath /sdk/lib/tools.jar",
		"-Xlint:all,-processing",
		"-classpath " + buildsys.JoinPath(req.Classpath),
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}

	req.Processor = ""
	if strings.Contains(strings.Join(Args(req), " "), "-processor") {
		t.Error("no processor requested")
	}
}
