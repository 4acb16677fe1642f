// Package provision guarantees a single index issue per record kind.
// Concurrent callers on one Provisioner coalesce into one provider round
// trip; resolved issues are served from memory for a short freshness window.
// Across processes the only guard is search-before-create, so a rare
// duplicate under a cross-process race is accepted and the exact-title
// tie-break keeps reads deterministic.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gitwiki.app/server/internal/model"
	"gitwiki.app/server/internal/record"
	"gitwiki.app/server/internal/tracker"
)

const defaultCacheTTL = 5 * time.Second

// Provisioner state is owned by exactly one tracker client configuration.
// Two Provisioners never share cache entries, so distinct repositories or
// tokens cannot observe each other's issues.
type Provisioner struct {
	tracker tracker.Client
	ttl     time.Duration

	group singleflight.Group

	mu    sync.Mutex
	cache map[model.Kind]cachedIssue

	now func() time.Time
}

type cachedIssue struct {
	issue model.Issue
	at    time.Time
}

type Option func(*Provisioner)

// WithCacheTTL overrides the freshness window. Zero or negative disables
// caching entirely.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provisioner) {
		p.ttl = ttl
	}
}

func withClock(now func() time.Time) Option {
	return func(p *Provisioner) {
		p.now = now
	}
}

func New(tc tracker.Client, opts ...Option) *Provisioner {
	p := &Provisioner{
		tracker: tc,
		ttl:     defaultCacheTTL,
		cache:   make(map[model.Kind]cachedIssue),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetOrCreate resolves the index issue for kind, creating it on first use.
// Callers arriving while a resolution is already in flight share its result.
// Failures are never cached; the next call starts from a fresh search.
// No retry policy lives here: callers wrap the whole operation when they
// need resilience to transient provider errors.
func (p *Provisioner) GetOrCreate(ctx context.Context, kind model.Kind) (*model.Issue, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	if issue, ok := p.cached(kind); ok {
		return issue, nil
	}

	v, err, _ := p.group.Do(string(kind), func() (any, error) {
		// A caller that queued behind the flight may find the cache
		// already warm once it becomes the new leader.
		if issue, ok := p.cached(kind); ok {
			return issue, nil
		}

		issue, err := p.resolve(ctx, kind.Definition())
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.cache[kind] = cachedIssue{issue: *issue, at: p.now()}
		p.mu.Unlock()

		return issue, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Issue), nil
}

// Refresh replaces the cached issue after a successful body update so
// read-modify-write sequences inside one freshness window observe their own
// writes. Cross-process writers are still last-writer-wins.
func (p *Provisioner) Refresh(kind model.Kind, issue *model.Issue) {
	if issue == nil {
		return
	}
	p.mu.Lock()
	p.cache[kind] = cachedIssue{issue: *issue, at: p.now()}
	p.mu.Unlock()
}

// Invalidate drops the cached issue for kind so the next call re-searches.
// Used after external administrative action is suspected.
func (p *Provisioner) Invalidate(kind model.Kind) {
	p.mu.Lock()
	delete(p.cache, kind)
	p.mu.Unlock()
}

func (p *Provisioner) cached(kind model.Kind) (*model.Issue, bool) {
	if p.ttl <= 0 {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.cache[kind]
	if !ok || p.now().Sub(entry.at) >= p.ttl {
		return nil, false
	}
	issue := entry.issue
	return &issue, true
}

func (p *Provisioner) resolve(ctx context.Context, def model.Definition) (*model.Issue, error) {
	issues, err := p.tracker.ListIssues(ctx, tracker.ListParams{
		Labels:  def.Labels,
		State:   "open",
		PerPage: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("searching for %s index issue: %w", def.Kind, err)
	}

	// Labels can be reused by unrelated issues; the canonical title is
	// authoritative among candidates.
	for i := range issues {
		if issues[i].Title == def.Title {
			found := issues[i]
			if !found.Locked {
				p.lock(ctx, def, found.Number)
			}
			slog.DebugContext(ctx, "index issue found",
				"kind", def.Kind, "issue_number", found.Number)
			return &found, nil
		}
	}

	created, err := p.tracker.CreateIssue(ctx, def.Title, record.InitialBody(def), def.Labels)
	if err != nil {
		return nil, fmt.Errorf("creating %s index issue: %w", def.Kind, err)
	}

	p.lock(ctx, def, created.Number)

	slog.InfoContext(ctx, "index issue created",
		"kind", def.Kind, "issue_number", created.Number)
	return created, nil
}

// lock is advisory hardening against drive-by edits, not a correctness
// requirement; failures are logged and swallowed.
func (p *Provisioner) lock(ctx context.Context, def model.Definition, number int) {
	if err := p.tracker.LockIssue(ctx, number); err != nil {
		slog.WarnContext(ctx, "failed to lock index issue",
			"kind", def.Kind, "issue_number", number, "error", err)
	}
}
