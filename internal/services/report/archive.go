// Package report implements C9: the report generator that renders
// JSON/HTML/Markdown views and compressed per-category log archives
// from the analyzer's (C8) output.
package report

import (
	"archive/tar"
	"fmt"
	"os"
	"path"

	"github.com/klauspost/compress/zstd"

	"github.com/ecoci/ecoci/internal/services/analyzer"
)

// LogFile is one plain-text log destined for an archive, keyed the way
// the layout: {classification}/{pkg-id}/{toolchain}.txt.
type LogFile struct {
	Classification string
	Package        string
	Toolchain      string
	Plain          []byte
}

// writeTarZst streams files into a tar+zstd archive at destPath,
// through a tempfile first to avoid buffering the whole archive in
// memory.
func writeTarZst(destPath string, files []LogFile) (err error) {
	tmp, err := os.CreateTemp(path.Dir(destPath), "archive-*.tmp")
	if err != nil {
		return fmt.Errorf("create tempfile: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		tmp.Close()

		if err != nil {
			os.Remove(tmpPath)
			return
		}

		err = os.Rename(tmpPath, destPath)
	}()

	zw, err := zstd.NewWriter(tmp)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	for _, f := range files {
		name := fmt.Sprintf("%s/%s/%s.txt", f.Classification, f.Package, f.Toolchain)

		if err := tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(f.Plain)),
		}); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}

		if _, err := tw.Write(f.Plain); err != nil {
			return fmt.Errorf("write body %s: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}

	return zw.Close()
}

// BuildAllArchive writes logs-archives/all.tar.zst with every log from
// every package/toolchain/classification.
func BuildAllArchive(destDir string, files []LogFile) error {
	return writeTarZst(path.Join(destDir, "all.tar.zst"), files)
}

// BuildClassificationArchives writes logs-archives/{classification}.tar.zst
// as a second pass, one archive per classification bucket.
func BuildClassificationArchives(destDir string, byClass map[string][]LogFile) error {
	for class, files := range byClass {
		if err := writeTarZst(path.Join(destDir, class+".tar.zst"), files); err != nil {
			return fmt.Errorf("archive %s: %w", class, err)
		}
	}

	return nil
}

// GroupLogsByClassification buckets files the way BuildClassificationArchives
// expects, derived from the analyzer's crate-level classification.
func GroupLogsByClassification(report analyzer.Report, logOf func(pkg, tc string) ([]byte, bool)) map[string][]LogFile {
	out := map[string][]LogFile{}

	for class, crates := range report.ByClassification {
		for _, cr := range crates {
			for _, tc := range toolchainsOf(cr) {
				plain, ok := logOf(cr.Package, tc)
				if !ok {
					continue
				}

				out[string(class)] = append(out[string(class)], LogFile{
					Classification: string(class),
					Package:        cr.Package,
					Toolchain:      tc,
					Plain:          plain,
				})
			}
		}
	}

	return out
}

func toolchainsOf(cr analyzer.CrateResult) []string {
	var tcs []string

	if cr.Toolchain1 != nil {
		tcs = append(tcs, cr.ToolchainName1)
	}

	if cr.Toolchain2 != nil {
		tcs = append(tcs, cr.ToolchainName2)
	}

	return tcs
}
