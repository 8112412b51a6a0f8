// Package resultrow defines the Result row and SHA row entities C2
// persists: (experiment, toolchain, package) -> outcome + encoded log,
// and (experiment, git-repo) -> resolved commit.
package resultrow

import "github.com/ecoci/ecoci/internal/domain/outcome"

// Encoding is the byte encoding a log is stored under.
type Encoding string

const (
	EncodingPlain Encoding = "plain"
	EncodingGzip  Encoding = "gzip"
)

// Row is one (experiment, toolchain, package) result. The primary key
// is the triple; writes replace any prior row.
type Row struct {
	Experiment string          `json:"experiment"`
	Toolchain  string          `json:"toolchain"`
	Package    string          `json:"package"`
	Outcome    outcome.Outcome `json:"outcome"`
	Log        []byte          `json:"-"`
	Encoding   Encoding        `json:"encoding"`
}

// SHA is one (experiment, git-repo) -> resolved commit captured at
// prepare time, used to stamp reports for reproducibility.
type SHA struct {
	Experiment string `json:"experiment"`
	Repo       string `json:"repo"`
	Commit     string `json:"commit"`
}
