// Package history is the repository-history/churn risk signal: an optional
// input built on go-git rather than a `git log` subprocess, so the
// analysis never forks a child process to read its own input.
//
// This is explicitly a *signal*, never a DebtType: it only nudges a
// function's final_score within the bounds the scoring pipeline already
// allows for risk boosting, through a
// contextual_risk_multiplier in [1.0, 1.3].
package history

import (
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// defaultCommitLimit bounds how far back the walk reads; the signal is a
// bounded sample, not a full-history scan.
const defaultCommitLimit = 500

// FileChurn is one file's commit-count/author-count churn evidence.
type FileChurn struct {
	Path        string
	CommitCount int
	AuthorCount int
}

// Signal is the repository-history risk signal for one project. Available
// is false when the root is not a git repository or has no commits; a
// false signal never participates in scoring, mirroring the
// optional-coverage pattern already used by internal/coverage.
type Signal struct {
	Available bool
	Churn     map[string]FileChurn // keyed by repo-relative path, slash-separated
	maxChurn  int
}

// Load opens rootDir as a git repository and walks up to limit commits
// (defaultCommitLimit if limit <= 0) from HEAD, accumulating per-file
// commit counts and distinct author identities. Any failure to open the
// repository or read its log is treated as "no signal", not an error: the
// caller degrades gracefully exactly as it does for missing coverage data.
func Load(rootDir string, limit int) Signal {
	if limit <= 0 {
		limit = defaultCommitLimit
	}

	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Signal{Available: false}
	}

	head, err := repo.Head()
	if err != nil {
		return Signal{Available: false}
	}

	commitIter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return Signal{Available: false}
	}
	defer commitIter.Close()

	counts := make(map[string]int)
	authors := make(map[string]map[string]bool)

	seen := 0
	var prevCommit *object.Commit
	walkErr := commitIter.ForEach(func(c *object.Commit) error {
		if seen >= limit {
			return object.ErrCanceled
		}
		seen++

		if prevCommit != nil {
			accumulateDiff(c, prevCommit, counts, authors)
		}
		prevCommit = c
		return nil
	})
	_ = walkErr // ErrCanceled/EOF-style sentinels are expected, not failures

	if seen == 0 {
		return Signal{Available: false}
	}

	churn := make(map[string]FileChurn, len(counts))
	maxChurn := 0
	for path, n := range counts {
		ac := len(authors[path])
		churn[path] = FileChurn{Path: path, CommitCount: n, AuthorCount: ac}
		if n > maxChurn {
			maxChurn = n
		}
	}

	return Signal{Available: true, Churn: churn, maxChurn: maxChurn}
}

// accumulateDiff records every file path changed between a commit and its
// chronological successor (the commit walked just before it in the log,
// i.e. the newer one) against the newer commit's author. go-git's Patch
// computation is used instead of shelling out to `git log --numstat`.
func accumulateDiff(older, newer *object.Commit, counts map[string]int, authors map[string]map[string]bool) {
	patch, err := older.Patch(newer)
	if err != nil {
		return
	}
	author := newer.Author.Email
	for _, fp := range patch.FilePatches() {
		_, to := fp.Files()
		path := ""
		if to != nil {
			path = to.Path()
		} else if from, _ := fp.Files(); from != nil {
			path = from.Path()
		}
		if path == "" {
			continue
		}
		counts[path]++
		if authors[path] == nil {
			authors[path] = make(map[string]bool)
		}
		authors[path][author] = true
	}
}

// contextualRiskFloor/Ceiling bound the multiplier the scoring pipeline's
// stage 13 risk boost applies for churn evidence.
const (
	contextualRiskFloor   = 1.0
	contextualRiskCeiling = 1.3
)

// ContextualRiskMultiplier normalizes a file's churn into the
// [1.0, 1.3] multiplier consumed by scoring.Input.ContextualRiskMultiplier.
// A file with no recorded churn (not found, or the signal is unavailable)
// gets the floor (no adjustment). The normalization is relative to the
// busiest file in the same signal, so the multiplier is scale-independent
// across repositories of different sizes and ages.
func (s Signal) ContextualRiskMultiplier(file string) float64 {
	if !s.Available || s.maxChurn == 0 {
		return contextualRiskFloor
	}
	fc, ok := s.Churn[file]
	if !ok {
		return contextualRiskFloor
	}
	ratio := float64(fc.CommitCount) / float64(s.maxChurn)
	return contextualRiskFloor + ratio*(contextualRiskCeiling-contextualRiskFloor)
}

// TopChurned returns the n files with the highest commit counts, sorted
// descending, ties broken by path for determinism.
func (s Signal) TopChurned(n int) []FileChurn {
	if !s.Available {
		return nil
	}
	all := make([]FileChurn, 0, len(s.Churn))
	for _, fc := range s.Churn {
		all = append(all, fc)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CommitCount != all[j].CommitCount {
			return all[i].CommitCount > all[j].CommitCount
		}
		return all[i].Path < all[j].Path
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// EvidenceFor returns the normalized path of a file with recorded churn,
// for use in a Risk-classified item's context suggestion, or "" when the
// signal is unavailable or the file has no recorded commits.
func EvidenceFor(s Signal, file string) string {
	if !s.Available {
		return ""
	}
	fc, ok := s.Churn[file]
	if !ok || fc.CommitCount == 0 {
		return ""
	}
	return model.Location{File: file}.NormalizedFile()
}
