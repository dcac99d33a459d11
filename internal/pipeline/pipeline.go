// Package pipeline orchestrates one reconciliation run: load partial
// activities, resolve them, assemble holdings, apply corrections and persist
// the diff against the previous run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/portwatch/reconciler/internal/domain"
	"github.com/portwatch/reconciler/internal/feed"
	"github.com/portwatch/reconciler/internal/holdings"
	"github.com/portwatch/reconciler/internal/resolver"
	"github.com/portwatch/reconciler/internal/store"
	"github.com/portwatch/reconciler/internal/syncer"
)

// Summary reports what one run did.
type Summary struct {
	Skipped    bool
	Accounts   int
	Activities int
	Holdings   int
	Inserted   int
	Updated    int
	Deleted    int
}

// Pipeline wires the stages of a reconciliation run.
type Pipeline struct {
	name      string
	feed      *feed.DirectoryFeed
	assembler *holdings.Assembler
	corrector *holdings.Corrector
	repo      store.Repository
	hashes    *store.RunHashCache
}

// New creates a Pipeline.
func New(name string, f *feed.DirectoryFeed, assembler *holdings.Assembler,
	corrector *holdings.Corrector, repo store.Repository, hashes *store.RunHashCache) *Pipeline {
	return &Pipeline{
		name:      name,
		feed:      f,
		assembler: assembler,
		corrector: corrector,
		repo:      repo,
		hashes:    hashes,
	}
}

// Run executes one full pass. When the source tree's content hash matches the
// previous run, the whole pass is skipped.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	hash, err := syncer.HashSourceTree(p.feed.Dir())
	if err != nil {
		return Summary{}, err
	}
	if cached := p.hashes.Get(p.name); cached != "" && cached == hash {
		slog.Info("source tree unchanged, skipping run", "pipeline", p.name)
		return Summary{Skipped: true}, nil
	}

	accounts, activities, assembled, err := p.build(ctx)
	if err != nil {
		return Summary{}, err
	}

	persisted, err := p.repo.ListActivities(ctx, accounts)
	if err != nil {
		return Summary{}, err
	}

	cs := syncer.Diff(persisted, activities)
	if err := p.repo.CommitRun(ctx, cs, assembled); err != nil {
		return Summary{}, fmt.Errorf("committing run: %w", err)
	}

	p.hashes.Set(p.name, hash)

	summary := Summary{
		Accounts:   len(accounts),
		Activities: len(activities),
		Holdings:   len(assembled),
		Inserted:   len(cs.Inserts),
		Updated:    len(cs.Updates),
		Deleted:    len(cs.Deletes),
	}
	slog.Info("run completed", "pipeline", p.name,
		"accounts", summary.Accounts, "activities", summary.Activities,
		"holdings", summary.Holdings, "inserted", summary.Inserted,
		"updated", summary.Updated, "deleted", summary.Deleted)
	return summary, nil
}

// BuildHoldings resolves and assembles the current source tree without
// persisting anything. The export command uses it to produce reports.
func (p *Pipeline) BuildHoldings(ctx context.Context) ([]*domain.Holding, error) {
	_, _, assembled, err := p.build(ctx)
	return assembled, err
}

func (p *Pipeline) build(ctx context.Context) ([]string, []domain.Activity, []*domain.Holding, error) {
	byAccount, err := p.feed.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	var activities []domain.Activity
	for _, account := range accounts {
		activities = append(activities, resolver.Resolve(account, byAccount[account])...)
	}

	existing, err := p.repo.ListHoldings(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	assembled, err := p.assembler.Assemble(ctx, activities, existing)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, h := range assembled {
		p.corrector.Apply(h)
	}

	return accounts, activities, assembled, nil
}
