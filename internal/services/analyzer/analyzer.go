// Package analyzer implements C8's analyzer half: given a classified
// pair of outcomes per package, it groups crates by classification and,
// for regressed/fixed, partitions them into a root set (bucketed by
// failure reason) and a dependency tree (bucketed by the packages a
// depends-on failure names).
package analyzer

import (
	"sort"

	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

// CrateResult pairs a package with its classification and the two
// outcomes it was derived from.
type CrateResult struct {
	Package         string
	Classification  outcome.Classification
	ToolchainName1  string
	ToolchainName2  string
	Toolchain1      *outcome.Outcome
	Toolchain2      *outcome.Outcome
}

// Report is the analyzer's complete view over one experiment, the
// structure both the HTML report and the Markdown summary render from.
type Report struct {
	ByClassification map[outcome.Classification][]CrateResult
	// RootSet buckets regressed/fixed crates whose failure reason is
	// not depends-on(...), keyed by failure reason. A compiler-error
	// outcome contributes to one bucket per diagnostic code, so a
	// crate with {E0001, E0002} appears under both "compiler-error:E0001"
	// and "compiler-error:E0002".
	RootSet map[string][]CrateResult
	// DependencyTree buckets regressed/fixed crates whose failure
	// reason is depends-on(S), one entry per package named in S.
	DependencyTree map[string][]CrateResult
}

// Analyze groups rows (already filtered to one experiment, one
// toolchain pair) by package and classifies each pair, then partitions
// the regressed/fixed set.
func Analyze(rows []resultrow.Row, toolchain1, toolchain2 string) Report {
	byPkg := map[string]struct{ tc1, tc2 *outcome.Outcome }{}

	for i := range rows {
		row := rows[i]

		entry := byPkg[row.Package]

		switch row.Toolchain {
		case toolchain1:
			entry.tc1 = &row.Outcome
		case toolchain2:
			entry.tc2 = &row.Outcome
		}

		byPkg[row.Package] = entry
	}

	packages := make([]string, 0, len(byPkg))
	for pkg := range byPkg {
		packages = append(packages, pkg)
	}

	sort.Strings(packages)

	report := Report{
		ByClassification: map[outcome.Classification][]CrateResult{},
		RootSet:          map[string][]CrateResult{},
		DependencyTree:   map[string][]CrateResult{},
	}

	for _, pkg := range packages {
		entry := byPkg[pkg]
		class := outcome.Classify(entry.tc1, entry.tc2)

		cr := CrateResult{
			Package:        pkg,
			Classification: class,
			ToolchainName1: toolchain1,
			ToolchainName2: toolchain2,
			Toolchain1:     entry.tc1,
			Toolchain2:     entry.tc2,
		}
		report.ByClassification[class] = append(report.ByClassification[class], cr)

		if class == outcome.Regressed || class == outcome.Fixed || class == outcome.SpuriousRegressed || class == outcome.SpuriousFixed {
			partition(&report, cr)
		}
	}

	return report
}

// partition assigns a regressed/fixed crate to the root set or the
// dependency tree based on whichever side actually failed.
func partition(report *Report, cr CrateResult) {
	failing := cr.Toolchain2
	if cr.Toolchain1 != nil && cr.Toolchain1.IsFailure() {
		failing = cr.Toolchain1
	}

	if failing == nil {
		return
	}

	if failing.FailReason == outcome.FailDependsOn {
		for _, dep := range failing.DependsOn {
			report.DependencyTree[dep] = append(report.DependencyTree[dep], cr)
		}

		return
	}

	if failing.FailReason == outcome.FailCompilerError && len(failing.DiagnosticCodes) > 0 {
		for _, code := range failing.DiagnosticCodes {
			key := "compiler-error:" + code
			report.RootSet[key] = append(report.RootSet[key], cr)
		}

		return
	}

	report.RootSet[string(failing.FailReason)] = append(report.RootSet[string(failing.FailReason)], cr)
}
