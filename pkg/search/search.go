// Package search filters a snapshot with incremental fuzzy matching. The
// matcher is a subsequence matcher: every character of the query must
// appear in the candidate in order, not necessarily contiguously. Scoring
// rewards contiguous runs, matches at the start of the name and exact case
// correspondence; ties break on lexicographic name so a given snapshot and
// query always produce the same ranking.
package search

import (
	"context"
	"sort"

	"github.com/hbacelar8/tecarius/pkg/alpm"
	"github.com/hbacelar8/tecarius/pkg/store"
)

// Scope selects which records a filter call considers and which fields it
// matches against.
type Scope int

const (
	// ScopeAll matches every record by name.
	ScopeAll Scope = iota
	// ScopeInstalledOnly matches installed records by name.
	ScopeInstalledOnly
	// ScopeName matches every record, name only.
	ScopeName
	// ScopeNameAndDescription matches every record by name or description.
	ScopeNameAndDescription
)

func (s Scope) String() string {
	switch s {
	case ScopeInstalledOnly:
		return "installed"
	case ScopeName:
		return "name"
	case ScopeNameAndDescription:
		return "name+description"
	}
	return "all"
}

// Match is one filter hit.
type Match struct {
	Record *alpm.PackageRecord
	Score  int
}

// cancelCheckInterval bounds how many records are examined between
// cooperative cancellation checks.
const cancelCheckInterval = 256

// Filter ranks the snapshot's records against the query. An empty query
// returns the scope's whole record set in snapshot order with zero scores.
// The context is checked at bounded intervals so a superseded query can be
// abandoned promptly.
func Filter(ctx context.Context, snap *store.Snapshot, query string, scope Scope) ([]Match, error) {
	var records []*alpm.PackageRecord
	if scope == ScopeInstalledOnly {
		records = snap.Installed()
	} else {
		records = snap.Records()
	}

	matches := make([]Match, 0, len(records))
	for i, rec := range records {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if query == "" {
			matches = append(matches, Match{Record: rec})
			continue
		}

		score, ok := MatchScore(rec.Name, query)
		if !ok && scope == ScopeNameAndDescription {
			// Description hits rank below any name hit.
			if descScore, descOK := MatchScore(rec.Description, query); descOK {
				score, ok = descScore-descriptionPenalty, true
			}
		}
		if ok {
			matches = append(matches, Match{Record: rec, Score: score})
		}
	}

	if query != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Score != matches[j].Score {
				return matches[i].Score > matches[j].Score
			}
			return matches[i].Record.Name < matches[j].Record.Name
		})
	}
	return matches, nil
}

// Scoring weights. The absolute values are arbitrary; only their relative
// order matters, and it must stay stable or rankings change between
// releases.
const (
	matchBase          = 1  // every matched character
	contiguousBonus    = 8  // matched character adjacent to the previous match
	caseBonus          = 2  // matched character with identical case
	startBonus         = 16 // first query character matches position 0
	descriptionPenalty = 1000
)

// MatchScore reports whether query is a case-insensitive subsequence of
// candidate and how well it fits. The score is deterministic for a given
// pair: the matcher always takes the leftmost position for each query
// character.
func MatchScore(candidate, query string) (int, bool) {
	if query == "" {
		return 0, true
	}

	score := 0
	prev := -2 // no previous match
	ci := 0
	cand := []rune(candidate)

	for qi, qr := range []rune(query) {
		found := false
		for ; ci < len(cand); ci++ {
			if !runeEqualFold(cand[ci], qr) {
				continue
			}

			score += matchBase
			if ci == prev+1 {
				score += contiguousBonus
			}
			if cand[ci] == qr {
				score += caseBonus
			}
			if qi == 0 && ci == 0 {
				score += startBonus
			}

			prev = ci
			ci++
			found = true
			break
		}
		if !found {
			return 0, false
		}
	}

	return score, true
}

func runeEqualFold(a, b rune) bool {
	if a == b {
		return true
	}
	if 'A' <= a && a <= 'Z' {
		a += 'a' - 'A'
	}
	if 'A' <= b && b <= 'Z' {
		b += 'a' - 'A'
	}
	return a == b
}
