package resultstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
)

type fakeResults struct {
	rows map[string]resultrow.Row
	shas []resultrow.SHA
}

func newFakeResults() *fakeResults {
	return &fakeResults{rows: map[string]resultrow.Row{}}
}

func key(exp, tc, pkg string) string { return exp + "|" + tc + "|" + pkg }

func (f *fakeResults) Upsert(_ context.Context, row resultrow.Row) error {
	f.rows[key(row.Experiment, row.Toolchain, row.Package)] = row
	return nil
}

func (f *fakeResults) Get(_ context.Context, exp, tc, pkg string) (resultrow.Row, bool, error) {
	row, ok := f.rows[key(exp, tc, pkg)]
	return row, ok, nil
}

func (f *fakeResults) ListForExperiment(_ context.Context, exp string) ([]resultrow.Row, error) {
	var out []resultrow.Row
	for _, row := range f.rows {
		if row.Experiment == exp {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeResults) DeleteOne(_ context.Context, exp, tc, pkg string) error {
	delete(f.rows, key(exp, tc, pkg))
	return nil
}

func (f *fakeResults) DeleteAll(_ context.Context, exp string) error {
	for k, row := range f.rows {
		if row.Experiment == exp {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeResults) RecordSHA(_ context.Context, sha resultrow.SHA) error {
	f.shas = append(f.shas, sha)
	return nil
}

func (f *fakeResults) ListSHAs(_ context.Context, exp string) ([]resultrow.SHA, error) {
	var out []resultrow.SHA
	for _, s := range f.shas {
		if s.Experiment == exp {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCrates struct {
	completed map[string]bool
}

func newFakeCrates() *fakeCrates { return &fakeCrates{completed: map[string]bool{}} }

func (f *fakeCrates) MarkCompleted(_ context.Context, exp, pkg string) error {
	f.completed[exp+"|"+pkg] = true
	return nil
}

func TestRecordResultDoesNotCompleteCrateUntilBothToolchainsRecorded(t *testing.T) {
	results := newFakeResults()
	crates := newFakeCrates()
	store := New(results, crates)

	require.NoError(t, store.RecordResult(context.Background(), "e1", "nightly", "left-pad", outcome.TestPass, []byte("ok"), resultrow.EncodingPlain))
	assert.False(t, crates.completed["e1|left-pad"])

	require.NoError(t, store.RecordResult(context.Background(), "e1", "beta", "left-pad", outcome.TestPass, []byte("ok"), resultrow.EncodingPlain))
	assert.True(t, crates.completed["e1|left-pad"])
}

func TestLoadPlainLogDecodesGzip(t *testing.T) {
	results := newFakeResults()
	store := New(results, newFakeCrates())

	plain := []byte("warning: unused variable")
	require.NoError(t, store.RecordResult(context.Background(), "e1", "nightly", "left-pad", outcome.TestPass, plain, resultrow.EncodingGzip))

	got, ok, err := store.LoadPlainLog(context.Background(), "e1", "nightly", "left-pad")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, plain, got)
}

func TestLoadTestResultMissingRowReturnsNotOK(t *testing.T) {
	store := New(newFakeResults(), newFakeCrates())

	_, ok, err := store.LoadTestResult(context.Background(), "e1", "nightly", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteResultRemovesOnlyThatRow(t *testing.T) {
	results := newFakeResults()
	store := New(results, newFakeCrates())

	require.NoError(t, store.RecordResult(context.Background(), "e1", "nightly", "left-pad", outcome.TestPass, []byte("a"), resultrow.EncodingPlain))
	require.NoError(t, store.RecordResult(context.Background(), "e1", "beta", "left-pad", outcome.TestPass, []byte("b"), resultrow.EncodingPlain))

	require.NoError(t, store.DeleteResult(context.Background(), "e1", "nightly", "left-pad"))

	_, ok, err := store.LoadTestResult(context.Background(), "e1", "nightly", "left-pad")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.LoadTestResult(context.Background(), "e1", "beta", "left-pad")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreBatchDecodesAndRecordsEachEntry(t *testing.T) {
	results := newFakeResults()
	crates := newFakeCrates()
	store := New(results, crates)

	plain := []byte("error[E0308]: mismatched types")
	encoded, err := Encode(plain, resultrow.EncodingGzip)
	require.NoError(t, err)

	batch := []RemoteResult{
		{Toolchain: "nightly", Package: "serde", Outcome: outcome.BuildFail(outcome.FailCompilerError), Log: encoded, Encoding: resultrow.EncodingGzip},
	}

	require.NoError(t, store.StoreBatch(context.Background(), "e1", batch))

	got, ok, err := store.LoadPlainLog(context.Background(), "e1", "nightly", "serde")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, plain, got)
}

func TestRecordAndListSHAs(t *testing.T) {
	store := New(newFakeResults(), newFakeCrates())

	require.NoError(t, store.RecordSHA(context.Background(), "e1", "github.com/rust-lang/regex", "abc123"))

	shas, err := store.ListSHAs(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, shas, 1)
	assert.Equal(t, "abc123", shas[0].Commit)
}

func TestListResultsDelegatesToListForExperiment(t *testing.T) {
	results := newFakeResults()
	store := New(results, newFakeCrates())

	require.NoError(t, store.RecordResult(context.Background(), "e1", "nightly", "left-pad", outcome.TestPass, []byte("ok"), resultrow.EncodingPlain))

	rows, err := store.ListResults(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "left-pad", rows[0].Package)
}
