package resultstore

import (
	"context"

	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

// ResultRepository is the subset of the postgres result repository
// this service needs.
type ResultRepository interface {
	Upsert(ctx context.Context, row resultrow.Row) error
	Get(ctx context.Context, exp, tc, pkg string) (resultrow.Row, bool, error)
	ListForExperiment(ctx context.Context, exp string) ([]resultrow.Row, error)
	DeleteOne(ctx context.Context, exp, tc, pkg string) error
	DeleteAll(ctx context.Context, exp string) error
	RecordSHA(ctx context.Context, sha resultrow.SHA) error
	ListSHAs(ctx context.Context, exp string) ([]resultrow.SHA, error)
}

// CrateCompleter is the subset of the crate repository needed to mark
// a crate done once both its toolchain results are recorded.
type CrateCompleter interface {
	MarkCompleted(ctx context.Context, exp, pkg string) error
}

// Store implements C2's record_result/load_test_result/load_log/
// delete_result/store/record_sha operations atop ResultRepository.
type Store struct {
	results ResultRepository
	crates  CrateCompleter
}

func New(results ResultRepository, crates CrateCompleter) *Store {
	return &Store{results: results, crates: crates}
}

// RecordResult stores plain bytes under enc for (exp, tc, pkg) and, if
// this completes both toolchains' results for the crate, marks it
// completed. This is the core of record_progress: the log capture
// itself is the caller's responsibility (the sandboxed runner writes
// into a logsink.Sink and passes its bytes here).
func (s *Store) RecordResult(ctx context.Context, exp, tc, pkg string, o outcome.Outcome, plain []byte, enc resultrow.Encoding) error {
	encoded, err := Encode(plain, enc)
	if err != nil {
		return err
	}

	if err := s.results.Upsert(ctx, resultrow.Row{
		Experiment: exp,
		Toolchain:  tc,
		Package:    pkg,
		Outcome:    o,
		Log:        encoded,
		Encoding:   enc,
	}); err != nil {
		return err
	}

	return s.maybeCompleteCrate(ctx, exp, pkg)
}

// maybeCompleteCrate marks the crate row completed once both its
// per-toolchain result rows exist. It doesn't know the experiment's two
// toolchain names itself — it re-derives them by checking how many
// distinct toolchains have a row for this package, which is equivalent
// for any experiment (exactly two toolchains by construction).
func (s *Store) maybeCompleteCrate(ctx context.Context, exp, pkg string) error {
	rows, err := s.results.ListForExperiment(ctx, exp)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)

	for _, r := range rows {
		if r.Package == pkg {
			seen[r.Toolchain] = true
		}
	}

	if len(seen) < 2 {
		return nil
	}

	return s.crates.MarkCompleted(ctx, exp, pkg)
}

// LoadTestResult is load_test_result: a pure read.
func (s *Store) LoadTestResult(ctx context.Context, exp, tc, pkg string) (outcome.Outcome, bool, error) {
	row, ok, err := s.results.Get(ctx, exp, tc, pkg)
	if err != nil || !ok {
		return outcome.Outcome{}, ok, err
	}

	return row.Outcome, true, nil
}

// LoadLog is load_log: a pure read returning the encoded log and its
// encoding, not yet decoded to plain.
func (s *Store) LoadLog(ctx context.Context, exp, tc, pkg string) ([]byte, resultrow.Encoding, bool, error) {
	row, ok, err := s.results.Get(ctx, exp, tc, pkg)
	if err != nil || !ok {
		return nil, "", ok, err
	}

	return row.Log, row.Encoding, true, nil
}

// LoadPlainLog is load_log followed by a decode to plain bytes — what
// archive generation always works from.
func (s *Store) LoadPlainLog(ctx context.Context, exp, tc, pkg string) ([]byte, bool, error) {
	encoded, enc, ok, err := s.LoadLog(ctx, exp, tc, pkg)
	if err != nil || !ok {
		return nil, ok, err
	}

	plain, err := Decode(encoded, enc)

	return plain, true, err
}

// DeleteResult is delete_result.
func (s *Store) DeleteResult(ctx context.Context, exp, tc, pkg string) error {
	return s.results.DeleteOne(ctx, exp, tc, pkg)
}

// DeleteAllResults is delete_all_results.
func (s *Store) DeleteAllResults(ctx context.Context, exp string) error {
	return s.results.DeleteAll(ctx, exp)
}

// RemoteResult is one entry of the batch store() accepts: a base64
// payload decoded by the caller before it reaches this service, plus
// enough identity to place it.
type RemoteResult struct {
	Toolchain string
	Package   string
	Outcome   outcome.Outcome
	Log       []byte
	Encoding  resultrow.Encoding
}

// StoreBatch implements store(exp, batch): each result is assumed
// already decoded from base64 by the HTTP adapter, and is written
// through the same RecordResult path as a locally-produced result.
func (s *Store) StoreBatch(ctx context.Context, exp string, batch []RemoteResult) error {
	for _, r := range batch {
		plain, err := Decode(r.Log, r.Encoding)
		if err != nil {
			return err
		}

		if err := s.RecordResult(ctx, exp, r.Toolchain, r.Package, r.Outcome, plain, r.Encoding); err != nil {
			return err
		}
	}

	return nil
}

// RecordSHA is record_sha: upsert.
func (s *Store) RecordSHA(ctx context.Context, exp, repo, commit string) error {
	return s.results.RecordSHA(ctx, resultrow.SHA{Experiment: exp, Repo: repo, Commit: commit})
}

// ListSHAs returns every SHA row recorded for exp.
func (s *Store) ListSHAs(ctx context.Context, exp string) ([]resultrow.SHA, error) {
	return s.results.ListSHAs(ctx, exp)
}

// ListResults returns every result row for exp, the report worker's
// input to the analyzer.
func (s *Store) ListResults(ctx context.Context, exp string) ([]resultrow.Row, error) {
	return s.results.ListForExperiment(ctx, exp)
}
