package gallery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/observability"
)

// Selector picks which adapter serves an operation and drives fallback
// execution across the configured source chain. It carries the session
// state: the detected project type, a user-pinned source, and the
// workspace root being inspected.
type Selector struct {
	registry *Registry
	configs  *ConfigManager
	detector *Detector

	mu           sync.RWMutex
	root         string
	snapshot     DetectedProjects
	scanned      bool
	project      ProjectType
	pinned       bool
	userSelected SourceType

	detectGroup singleflight.Group
}

// NewSelector creates a selector over the given registry and configuration.
// A nil detector uses the local filesystem.
func NewSelector(registry *Registry, configs *ConfigManager, detector *Detector) *Selector {
	if detector == nil {
		detector = NewDetector(nil)
	}
	return &Selector{
		registry: registry,
		configs:  configs,
		detector: detector,
	}
}

// SetRoot changes the workspace root and invalidates the cached detection
// result.
func (s *Selector) SetRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == root {
		return
	}
	s.root = root
	s.scanned = false
	s.pinned = false
}

// ProjectType returns the project type serving operations: the pinned
// type when one is set, otherwise the primary of the detected snapshot.
func (s *Selector) ProjectType() ProjectType {
	s.mu.RLock()
	if s.pinned {
		p := s.project
		s.mu.RUnlock()
		return p
	}
	s.mu.RUnlock()
	return s.scan().Primary
}

// DetectedProjects returns the full detection snapshot for the current
// workspace, scanning it on first use. A pinned project type does not
// affect the snapshot.
func (s *Selector) DetectedProjects() DetectedProjects {
	return s.scan()
}

// scan returns the cached detection snapshot, running one detection
// pass on first use. Concurrent callers share a single pass.
func (s *Selector) scan() DetectedProjects {
	s.mu.RLock()
	if s.scanned {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap
	}
	root := s.root
	s.mu.RUnlock()

	v, _, _ := s.detectGroup.Do(root, func() (any, error) {
		// Re-check under the flight: a caller that lost the race to an
		// already-completed pass must not trigger another one.
		s.mu.RLock()
		if s.scanned && s.root == root {
			snap := s.snapshot
			s.mu.RUnlock()
			return snap, nil
		}
		s.mu.RUnlock()

		snap := s.detector.Detect(root)
		s.mu.Lock()
		// A SetRoot racing with detection wins; keep its invalidation.
		if s.root == root {
			s.snapshot = snap
			s.scanned = true
		}
		s.mu.Unlock()
		return snap, nil
	})
	return v.(DetectedProjects)
}

// SetProjectType pins the project type, bypassing detection. Changing the
// project type clears any user-selected source, since the pin belonged to
// the previous ecosystem.
func (s *Selector) SetProjectType(p ProjectType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = p
	s.pinned = true
	s.userSelected = ""
}

// SetUserSource pins a source for all subsequent operations. An empty
// source clears the pin.
func (s *Selector) SetUserSource(source SourceType) error {
	if source != "" && !s.registry.Has(source) {
		return pkgerrors.New(pkgerrors.ErrCodeNoAdapter,
			"%s", "no adapter registered for source "+string(source))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userSelected = source
	return nil
}

// UserSource returns the pinned source, or "" when none is set.
func (s *Selector) UserSource() SourceType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userSelected
}

// Config returns the source configuration for the current project type.
func (s *Selector) Config() SourceConfig {
	return s.configs.Config(s.ProjectType())
}

// AdaptersForProject resolves a project type's configured source chain
// to its registered adapters, in retry order, skipping unregistered
// sources.
func (s *Selector) AdaptersForProject(p ProjectType) []Adapter {
	return s.registry.AdaptersFor(s.configs.Config(p).AllSources())
}

// DefaultAdapter returns the first registered adapter of a project
// type's configured chain.
func (s *Selector) DefaultAdapter(p ProjectType) (Adapter, error) {
	adapters := s.AdaptersForProject(p)
	if len(adapters) == 0 {
		return nil, pkgerrors.New(pkgerrors.ErrCodeNoAdapter,
			"%s", "no adapter registered for project "+string(p))
	}
	return adapters[0], nil
}

// SelectSource resolves which single source should serve an operation,
// in order of precedence: the explicit argument, the user-pinned source,
// the configured primary, each configured fallback, and finally any
// registered adapter. Only an empty registry yields an error.
func (s *Selector) SelectSource(explicit SourceType) (SourceType, error) {
	if explicit != "" && s.registry.Has(explicit) {
		return explicit, nil
	}
	if u := s.UserSource(); u != "" && s.registry.Has(u) {
		return u, nil
	}
	for _, src := range s.registry.Filter(s.Config().AllSources()) {
		return src, nil
	}
	if all := s.registry.Sources(); len(all) > 0 {
		return all[0], nil
	}
	return "", pkgerrors.New(pkgerrors.ErrCodeNoAdapter, "no package sources registered")
}

// Adapter resolves SelectSource to the adapter itself.
func (s *Selector) Adapter(explicit SourceType) (Adapter, error) {
	src, err := s.SelectSource(explicit)
	if err != nil {
		return nil, err
	}
	return s.registry.Get(src)
}

// chain returns the retry order for fallback execution: the user-pinned
// source alone when one is set, otherwise the configured chain with
// unregistered sources skipped.
func (s *Selector) chain(ctx context.Context, operation string) []SourceType {
	if u := s.UserSource(); u != "" {
		return []SourceType{u}
	}
	all := s.Config().AllSources()
	avail := s.registry.Filter(all)
	if len(avail) < len(all) {
		present := make(map[SourceType]bool, len(avail))
		for _, src := range avail {
			present[src] = true
		}
		for _, src := range all {
			if !present[src] {
				observability.Source().OnSourceSkipped(ctx, string(src), operation)
			}
		}
	}
	return avail
}

// Attempt records the outcome of one adapter invocation inside a
// fallback chain.
type Attempt struct {
	Source   SourceType
	Duration time.Duration
	Err      error
}

// ExecuteWithFallback runs op against each source in the retry order for
// the current project type until one succeeds. A user-pinned source is
// tried alone. When every source fails, the returned error aggregates
// each attempt's failure; when no source is available at all, the error
// is the distinct no-adapter condition.
func ExecuteWithFallback[T any](ctx context.Context, s *Selector, operation string, op func(ctx context.Context, a Adapter) (T, error)) (T, []Attempt, error) {
	var zero T
	chain := s.chain(ctx, operation)
	if len(chain) == 0 {
		return zero, nil, pkgerrors.New(pkgerrors.ErrCodeNoAdapter,
			"%s", "no package source available for "+operation)
	}

	attempts := make([]Attempt, 0, len(chain))
	invoked := false
	for i, src := range chain {
		a, err := s.registry.Get(src)
		if err != nil {
			attempts = append(attempts, Attempt{Source: src, Err: err})
			continue
		}
		invoked = true

		observability.Source().OnAttemptStart(ctx, string(src), operation)
		start := time.Now()
		result, err := op(ctx, a)
		elapsed := time.Since(start)
		observability.Source().OnAttemptComplete(ctx, string(src), operation, elapsed, err)

		attempts = append(attempts, Attempt{Source: src, Duration: elapsed, Err: err})
		if err == nil {
			return result, attempts, nil
		}
		if ctx.Err() != nil {
			break
		}
		if i+1 < len(chain) {
			observability.Source().OnFallback(ctx, string(src), string(chain[i+1]), operation)
		}
	}

	// Every source in the try list was missing from the registry
	// (a pinned source can be unregistered after pinning): that is the
	// no-adapter condition, not an operation failure.
	if !invoked {
		return zero, attempts, pkgerrors.New(pkgerrors.ErrCodeNoAdapter,
			"%s", "no package source available for "+operation)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "all sources failed for %s:", operation)
	for _, at := range attempts {
		fmt.Fprintf(&b, " [%s: %v]", at.Source, at.Err)
	}
	return zero, attempts, pkgerrors.New(pkgerrors.ErrCodeAllSourcesFailed, "%s", b.String())
}
