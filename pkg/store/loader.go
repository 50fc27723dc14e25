package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hbacelar8/tecarius/pkg/alpm"
)

// syncReadLimit bounds how many repository databases are parsed at once.
const syncReadLimit = 4

// DatabaseReader is the read side of the package database collaborator.
type DatabaseReader interface {
	ReadLocal(ctx context.Context) ([]*alpm.PackageRecord, error)
	ReadSync(ctx context.Context, repo string) ([]*alpm.PackageRecord, error)
}

// Loader builds snapshots from the package databases.
type Loader struct {
	db      DatabaseReader
	conf    *alpm.Conf
	timeout time.Duration // zero means no deadline
}

// NewLoader creates a Loader. A non-zero timeout bounds every Load call.
func NewLoader(db DatabaseReader, conf *alpm.Conf, timeout time.Duration) *Loader {
	return &Loader{db: db, conf: conf, timeout: timeout}
}

// Load reads the local database and every configured repository database
// and merges them into a new Snapshot.
//
// An unreadable local database is fatal and yields a LoadError with kind
// LoadIO. Unreadable repository databases are not: the snapshot is built
// from the sources that loaded and returned together with a LoadError of
// kind LoadPartial naming the failures, so stale mirrors never block
// browsing cached data.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	local, err := l.db.ReadLocal(ctx)
	if err != nil {
		return nil, classifyLoadErr(err)
	}

	type syncResult struct {
		repo    string
		records []*alpm.PackageRecord
		err     error
	}

	var mu sync.Mutex
	results := make(map[string]syncResult, len(l.conf.Repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncReadLimit)
	for _, repo := range l.conf.Repos {
		g.Go(func() error {
			records, err := l.db.ReadSync(gctx, repo.Name)
			mu.Lock()
			results[repo.Name] = syncResult{repo: repo.Name, records: records, err: err}
			mu.Unlock()
			// A failed repository must not cancel its siblings.
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, classifyLoadErr(err)
	}

	syncSets := make(map[string][]*alpm.PackageRecord, len(results))
	var failed []alpm.Source
	for _, repo := range l.conf.Repos {
		res := results[repo.Name]
		if res.err != nil {
			failed = append(failed, alpm.RepoSource(repo.Name))
			continue
		}
		syncSets[repo.Name] = res.records
	}

	snap := NewSnapshot(l.conf, local, syncSets, failed)
	if len(failed) > 0 {
		return snap, &LoadError{Kind: LoadPartial, Sources: failed}
	}
	return snap, nil
}

func classifyLoadErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &LoadError{Kind: LoadTimedOut, Err: err}
	}
	return &LoadError{Kind: LoadIO, Err: err}
}
