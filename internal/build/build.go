// Package build runs the CAP build pipeline for one package description:
// validate, compile, convert, verify and collect outputs. Temporary
// directories created on the way are removed when the run ends, also when it
// is interrupted.
package build

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/goplus/jcbuild/formula"
	"github.com/goplus/jcbuild/internal/env"
	"github.com/goplus/jcbuild/internal/identity"
	"github.com/goplus/jcbuild/internal/naming"
	"github.com/goplus/jcbuild/pkgs/buildsys"
	"github.com/goplus/jcbuild/pkgs/buildsys/converter"
	"github.com/goplus/jcbuild/pkgs/buildsys/javac"
	"github.com/goplus/jcbuild/pkgs/buildsys/verifier"
	"github.com/goplus/jcbuild/pkgs/sdk"
)

// DefaultSources is the source root used when a package names neither
// sources nor classes and the directory exists.
const DefaultSources = "src/main/javacard"

// VerifierFunc returns the verifier shipped with kit.
type VerifierFunc func(kit *sdk.SDK) buildsys.Verifier

// Builder builds CAP files. A Builder may run several builds in sequence;
// they share only the SDK cache.
type Builder struct {
	logger *log.Logger

	compiler    buildsys.Compiler
	converter   buildsys.Converter
	newVerifier VerifierFunc

	// jckits are SDK roots tried, in order, when a package names none.
	jckits []string
	// tmp, when set, is a fixed work directory that is reused and kept.
	tmp string
	// tmpRoot is the parent of per-run temporary directories.
	tmpRoot string

	kits *sdkCache
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithCompiler replaces the javac adapter.
func WithCompiler(c buildsys.Compiler) Option {
	return func(b *Builder) {
		b.compiler = c
	}
}

// WithConverter replaces the converter adapter.
func WithConverter(c buildsys.Converter) Option {
	return func(b *Builder) {
		b.converter = c
	}
}

// WithVerifier replaces the off-card verifier adapter.
func WithVerifier(fn VerifierFunc) Option {
	return func(b *Builder) {
		b.newVerifier = fn
	}
}

// WithDetect replaces SDK discovery.
func WithDetect(detect sdk.DetectFunc) Option {
	return func(b *Builder) {
		b.kits = newSDKCache(detect)
	}
}

// WithJCKit adds SDK roots used by packages that name no SDK. Empty roots
// are ignored. $JC_HOME is always tried last.
func WithJCKit(roots ...string) Option {
	return func(b *Builder) {
		for _, root := range roots {
			if root != "" {
				b.jckits = append(b.jckits, root)
			}
		}
	}
}

// WithTmp sets a fixed work directory. Its content is replaced on each
// build and never removed. An empty dir restores per-run temporary
// directories.
func WithTmp(dir string) Option {
	return func(b *Builder) {
		b.tmp = dir
	}
}

// WithTempRoot sets where per-run temporary directories are created.
func WithTempRoot(dir string) Option {
	return func(b *Builder) {
		b.tmpRoot = dir
	}
}

// New creates a Builder driving the JDK and SDK tools.
func New(opts ...Option) *Builder {
	b := &Builder{
		compiler:  javac.New(),
		converter: converter.New(),
		newVerifier: func(kit *sdk.SDK) buildsys.Verifier {
			return verifier.New(kit)
		},
		tmp:  env.TmpOverride(),
		kits: newSDKCache(sdk.Detect),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

// Result describes the files a build produced.
type Result struct {
	Package *identity.Package
	Kit     *sdk.SDK
	Target  *sdk.SDK

	// Name is the rendered output template.
	Name string
	// Meta holds the values the name was rendered from.
	Meta naming.Meta

	CAP string
	EXP string // empty unless an export directory was requested
	JCA string // empty unless a listing was requested
	Jar string // empty unless a jar was requested
}

// Build builds one package. Relative paths in raw resolve against proj.
// Temporary directories are removed before Build returns; an interrupt
// signal received meanwhile cancels the running tool and the build.
func (b *Builder) Build(ctx context.Context, proj *formula.Project, raw formula.Package) (res *Result, err error) {
	ctx, stop := notifyInterrupt(ctx)
	defer stop()

	r := b.newRun(proj)
	defer func() {
		if ctx.Err() != nil {
			r.log.Warn("interrupted, cleaning up")
		}
		if cerr := r.temps.cleanup(); cerr != nil {
			r.log.Warn("cleanup failed", "err", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	if err := r.validate(raw); err != nil {
		return nil, err
	}
	if len(r.pkg.Sources) > 0 {
		if err := r.compile(ctx); err != nil {
			return nil, interrupted(ctx, err)
		}
	}
	if err := r.convert(ctx); err != nil {
		return nil, interrupted(ctx, err)
	}
	if r.pkg.Verify {
		if err := r.verify(ctx); err != nil {
			return nil, interrupted(ctx, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect()
}

// BuildAll builds pkgs in order and stops at the first failure.
func (b *Builder) BuildAll(ctx context.Context, proj *formula.Project, pkgs []formula.Package) ([]*Result, error) {
	results := make([]*Result, 0, len(pkgs))
	for _, p := range pkgs {
		res, err := b.Build(ctx, proj, p)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (b *Builder) newRun(proj *formula.Project) *run {
	id := uuid.NewString()
	logger := b.logger.With("run", id[:8])
	return &run{
		b:     b,
		proj:  proj,
		log:   logger,
		temps: newTempSet(b.tmpRoot, b.tmp, id, logger),
	}
}

// interrupted prefers the context error over the error a killed tool
// reports.
func interrupted(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
		return errors.Join(cerr, err)
	}
	return err
}
