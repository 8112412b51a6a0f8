// Package pkgid defines the package identifier used as a primary key
// throughout the store: one of a registry package, a git repository,
// or a local package.
package pkgid

import "fmt"

// Kind discriminates the three package identity variants.
type Kind string

const (
	KindRegistry Kind = "registry"
	KindGit      Kind = "git"
	KindLocal    Kind = "local"
)

// ID is a package identifier. Exactly one of the kind-specific field
// groups is meaningful, selected by Kind.
type ID struct {
	Kind Kind `json:"kind"`

	// Registry
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`

	// Git
	URL          string `json:"url,omitempty"`
	PinnedCommit string `json:"pinned_commit,omitempty"`

	// Local
	LocalName string `json:"local_name,omitempty"`
}

func Registry(name, version string) ID {
	return ID{Kind: KindRegistry, Name: name, Version: version}
}

func Git(url, pinnedCommit string) ID {
	return ID{Kind: KindGit, URL: url, PinnedCommit: pinnedCommit}
}

func Local(name string) ID {
	return ID{Kind: KindLocal, LocalName: name}
}

// String renders the stable textual identifier used as the store's
// primary key for this package.
func (id ID) String() string {
	switch id.Kind {
	case KindRegistry:
		return fmt.Sprintf("reg/%s/%s", id.Name, id.Version)
	case KindGit:
		if id.PinnedCommit == "" {
			return fmt.Sprintf("git/%s", id.URL)
		}

		return fmt.Sprintf("git/%s#%s", id.URL, id.PinnedCommit)
	case KindLocal:
		return fmt.Sprintf("local/%s", id.LocalName)
	default:
		return "unknown"
	}
}

// HasPlaceholderCommit reports whether this is a git package created
// without a pinned commit — prepare must resolve and record the
// actual commit before the crate's effective identity is final.
func (id ID) HasPlaceholderCommit() bool {
	return id.Kind == KindGit && id.PinnedCommit == ""
}

// WithResolvedCommit returns a copy of id with PinnedCommit set to
// sha. Used by the task graph executor's prepare step once the
// package source fetcher (an opaque collaborator) reports the
// resolved commit.
func (id ID) WithResolvedCommit(sha string) ID {
	id.PinnedCommit = sha

	return id
}
