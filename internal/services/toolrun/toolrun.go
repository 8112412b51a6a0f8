// Package toolrun is the concrete collaborator behind rungraph's
// Preparer/ToolchainRunner/Cleaner interfaces: cargo invocations built
// from a Command and executed through a sandbox.Runtime. Cloning the
// package source itself is out of scope — a workspace directory
// already holding the checkout is a precondition this package assumes,
// never arranges.
package toolrun

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/services/logsink"
	"github.com/ecoci/ecoci/internal/services/sandbox"
	"github.com/ecoci/ecoci/pkg/mlog"
)

// BrokenLister is the "known broken" manifest consulted on prepare.
type BrokenLister interface {
	IsBroken(pkg string) (outcome.BrokenReason, bool)
}

// ShaRecorder persists the commit a package resolved to on prepare.
type ShaRecorder func(ctx context.Context, repo, commit string) error

// Layout resolves the on-disk paths a package's sandboxed runs share.
type Layout struct {
	WorkspaceRoot string
	CargoHome     string
	RustupHome    string
}

func (l Layout) packageDir(pkg string) string  { return filepath.Join(l.WorkspaceRoot, pkg) }
func (l Layout) targetDir(pkg string) string   { return filepath.Join(l.packageDir(pkg), "target") }

// Preparer implements rungraph.Preparer: cargo fetch plus commit
// resolution for git-sourced packages, and a broken-crate override
// consulted before any command runs.
type Preparer struct {
	layout  Layout
	broken  BrokenLister
	record  ShaRecorder
	gitRepo func(pkg string) (repo string, ok bool)
}

func NewPreparer(layout Layout, broken BrokenLister, record ShaRecorder, gitRepo func(pkg string) (string, bool)) *Preparer {
	return &Preparer{layout: layout, broken: broken, record: record, gitRepo: gitRepo}
}

// Prepare runs cargo fetch against the package's already-checked-out
// workspace, resolving and recording its commit SHA when the package
// identifies a git source.
func (p *Preparer) Prepare(ctx context.Context, pkg string, log *logsink.Sink) (*outcome.Outcome, error) {
	if p.broken != nil {
		if reason, ok := p.broken.IsBroken(pkg); ok {
			o := outcome.BrokenCrate(reason)
			return &o, nil
		}
	}

	dir := p.layout.packageDir(pkg)

	if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err != nil {
		o := outcome.BrokenCrate(outcome.BrokenBadManifest)
		return &o, nil
	}

	result := sandbox.NewCommand(dir, "cargo").
		Args("fetch").
		Env("CARGO_HOME", p.layout.CargoHome).
		Env("RUSTUP_HOME", p.layout.RustupHome).
		ProcessLines(func(line string) { log.Write(mlog.InfoLevel, line) }).
		LogOutput(true).
		Run(ctx, nil)

	if result.Err != nil {
		return nil, fmt.Errorf("cargo fetch %s: %w", pkg, result.Err)
	}

	if p.gitRepo == nil || p.record == nil {
		return nil, nil
	}

	repo, ok := p.gitRepo(pkg)
	if !ok {
		return nil, nil
	}

	commit, err := resolveCommit(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("resolve commit for %s: %w", pkg, err)
	}

	if err := p.record(ctx, repo, commit); err != nil {
		return nil, fmt.Errorf("record sha for %s: %w", pkg, err)
	}

	return nil, nil
}

func resolveCommit(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return strings.TrimSpace(out.String()), nil
}

// Runner implements rungraph.ToolchainRunner: one sandboxed cargo
// invocation per (package, toolchain, mode), classified into an
// outcome via sandbox.ClassifyFailure and diagnostic-code collection.
type Runner struct {
	layout      Layout
	runtime     sandbox.Runtime
	memoryLimit int64
	networkOff  bool
	lintCap     func(pkg string) experiment.LintCap
}

func NewRunner(layout Layout, runtime sandbox.Runtime, memoryLimit int64, networkOff bool, lintCap func(string) experiment.LintCap) *Runner {
	return &Runner{layout: layout, runtime: runtime, memoryLimit: memoryLimit, networkOff: networkOff, lintCap: lintCap}
}

// cargoArgs maps an experiment mode to the cargo subcommand+flags the
// original implementation's runner/tasks.rs task list runs.
func cargoArgs(mode experiment.Mode, toolchain string, cap experiment.LintCap) []string {
	base := []string{"+" + toolchain}

	switch mode {
	case experiment.ModeBuildOnly:
		return append(base, "build", "--all", "--all-targets")
	case experiment.ModeCheckOnly:
		return append(base, "check", "--all", "--all-targets")
	case experiment.ModeLint:
		args := append(base, "clippy", "--all", "--all-targets", "--")
		if cap != "" {
			args = append(args, "-D", string(cap))
		}
		return args
	case experiment.ModeDoc:
		return append(base, "doc", "--all", "--no-deps")
	default: // ModeBuildAndTest
		return append(base, "test", "--all", "--all-targets")
	}
}

// Run executes the mode-selected cargo command for pkg under toolchain
// inside the docker-backed sandbox, folding the sandbox's failure
// classification and any collected compiler diagnostic codes into the
// returned outcome.
func (r *Runner) Run(ctx context.Context, pkg, toolchain string, mode experiment.Mode, log *logsink.Sink) outcome.Outcome {
	dir := r.layout.packageDir(pkg)

	if mode == experiment.ModeUnstableFeatures {
		return scanUnstableFeatures(dir, log)
	}

	var cap experiment.LintCap
	if r.lintCap != nil {
		cap = r.lintCap(pkg)
	}

	cmd := sandbox.NewCommand(dir, "cargo").
		Args(cargoArgs(mode, toolchain, cap)...).
		ProcessLines(func(line string) { log.Write(mlog.InfoLevel, line) }).
		LogOutput(true).
		Sandboxed(sandbox.SandboxSpec{
			SourceMount: sandbox.Mount{Host: dir, Container: "/source"},
			CargoHome:   sandbox.Mount{Host: r.layout.CargoHome, Container: "/cargo"},
			RustupHome:  sandbox.Mount{Host: r.layout.RustupHome, Container: "/rustup"},
			TargetDir:   sandbox.Mount{Host: r.layout.targetDir(pkg), Container: "/source/target"},
			WorkingDir:  "/source",
			MemoryLimit: r.memoryLimit,
			NetworkingOff: r.networkOff,
			MapUserID:   true,
		})

	result := cmd.Run(ctx, r.runtime)

	return classify(result, mode)
}

// featureAttr matches a #![feature(a, b)] or #[feature(a, b)] attribute,
// the same shape the original implementation's hand-rolled token eater
// looked for (crate-level and item-level alike).
var featureAttr = regexp.MustCompile(`#!?\[\s*feature\s*\(([^)]*)\)\s*\]`)

// scanUnstableFeatures is UnstableFeatures(tc): a static scan of the
// package's source tree for #[feature(...)] attributes, never invoking
// cargo. It always succeeds; the point is to record which unstable
// features a crate depends on, not to build or test it.
func scanUnstableFeatures(dir string, log *logsink.Sink) outcome.Outcome {
	features := map[string]bool{}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".rs") {
			return nil
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		for _, match := range featureAttr.FindAllStringSubmatch(string(contents), -1) {
			for _, f := range strings.Split(match[1], ",") {
				if f = strings.TrimSpace(f); f != "" {
					features[f] = true
				}
			}
		}

		return nil
	})

	sorted := make([]string, 0, len(features))
	for f := range features {
		sorted = append(sorted, f)
	}
	sort.Strings(sorted)

	for _, f := range sorted {
		log.Write(mlog.InfoLevel, "unstable-feature: "+f)
	}

	return outcome.TestPass
}

func classify(result sandbox.RunResult, mode experiment.Mode) outcome.Outcome {
	kind := outcome.KindTestFail
	if mode == experiment.ModeBuildOnly || mode == experiment.ModeCheckOnly || mode == experiment.ModeLint || mode == experiment.ModeDoc {
		kind = outcome.KindBuildFail
	}

	if result.Err == nil && result.ExitCode == 0 {
		return outcome.TestPass
	}

	if codes := sandbox.CollectDiagnosticCodes(result.Log); len(codes) > 0 {
		return outcome.CompilerError(kind, codes)
	}

	reason := sandbox.ClassifyFailure(result)

	return outcome.Outcome{Kind: kind, FailReason: reason}
}

// Cleaner implements rungraph.Cleaner: removes a package's target
// directory between tasks to free disk under pressure.
type Cleaner struct {
	layout Layout
}

func NewCleaner(layout Layout) *Cleaner { return &Cleaner{layout: layout} }

// Cleanup removes pkg's target directory, or every known package's
// target directory when pkg is empty (the disk-watchdog-triggered,
// not-package-scoped cleanup path).
func (c *Cleaner) Cleanup(ctx context.Context, pkg string) error {
	if pkg == "" {
		entries, err := os.ReadDir(c.layout.WorkspaceRoot)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}

			if err := os.RemoveAll(c.layout.targetDir(e.Name())); err != nil {
				return err
			}
		}

		return nil
	}

	return os.RemoveAll(c.layout.targetDir(pkg))
}
