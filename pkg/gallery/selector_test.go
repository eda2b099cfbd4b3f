package gallery

import (
	"context"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/observability"
)

func newTestSelector(t *testing.T, adapters ...Adapter) (*Selector, *Registry) {
	t.Helper()
	r := NewRegistry()
	for _, a := range adapters {
		r.Register(a)
	}
	s := NewSelector(r, NewConfigManager(), NewDetector(&mapFinder{}))
	return s, r
}

func TestSelectSourcePrecedence(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	nuget := newFakeAdapter(SourceNuGet, ProjectDotnet)
	s, _ := newTestSelector(t, npm, npms, nuget)
	s.SetProjectType(ProjectNPM)

	// Explicit argument wins.
	got, err := s.SelectSource(SourceNuGet)
	if err != nil || got != SourceNuGet {
		t.Errorf("explicit: got %s, err %v", got, err)
	}

	// Unregistered explicit falls through to the configured primary.
	got, err = s.SelectSource(SourceSonatype)
	if err != nil || got != SourceNPMRegistry {
		t.Errorf("unregistered explicit: got %s, err %v", got, err)
	}

	// User pin beats the primary.
	if err := s.SetUserSource(SourceNPMS); err != nil {
		t.Fatalf("SetUserSource: %v", err)
	}
	got, _ = s.SelectSource("")
	if got != SourceNPMS {
		t.Errorf("user pin: got %s", got)
	}

	// Clearing the pin restores the primary.
	if err := s.SetUserSource(""); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	got, _ = s.SelectSource("")
	if got != SourceNPMRegistry {
		t.Errorf("primary: got %s", got)
	}
}

func TestSelectSourceFallbackAndAny(t *testing.T) {
	// Only the npm fallback is registered.
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	s, _ := newTestSelector(t, npms)
	s.SetProjectType(ProjectNPM)

	got, err := s.SelectSource("")
	if err != nil || got != SourceNPMS {
		t.Errorf("fallback: got %s, err %v", got, err)
	}

	// Nothing from the npm chain is registered: any adapter serves.
	nuget := newFakeAdapter(SourceNuGet, ProjectDotnet)
	s2, _ := newTestSelector(t, nuget)
	s2.SetProjectType(ProjectNPM)
	got, err = s2.SelectSource("")
	if err != nil || got != SourceNuGet {
		t.Errorf("any: got %s, err %v", got, err)
	}
}

func TestSelectSourceEmptyRegistry(t *testing.T) {
	s, _ := newTestSelector(t)
	s.SetProjectType(ProjectNPM)
	_, err := s.SelectSource("")
	if err == nil {
		t.Fatal("expected error on empty registry")
	}
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeNoAdapter {
		t.Errorf("code = %s", pkgerrors.GetCode(err))
	}
}

func TestSetUserSourceUnregistered(t *testing.T) {
	s, _ := newTestSelector(t, newFakeAdapter(SourceNPMRegistry, ProjectNPM))
	err := s.SetUserSource(SourceSonatype)
	if err == nil {
		t.Fatal("expected error pinning unregistered source")
	}
	if s.UserSource() != "" {
		t.Error("failed pin should leave no user source")
	}
}

func TestSetProjectTypeClearsUserSource(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	s, _ := newTestSelector(t, npm)
	s.SetProjectType(ProjectNPM)
	if err := s.SetUserSource(SourceNPMRegistry); err != nil {
		t.Fatal(err)
	}
	s.SetProjectType(ProjectMaven)
	if s.UserSource() != "" {
		t.Error("changing project type should clear the user-selected source")
	}
}

func TestProjectTypeDetectionCached(t *testing.T) {
	f := &mapFinder{files: []string{"go.mod"}}
	r := NewRegistry()
	s := NewSelector(r, NewConfigManager(), NewDetector(f))
	s.SetRoot("/work")

	if got := s.ProjectType(); got != ProjectGo {
		t.Fatalf("ProjectType = %s", got)
	}
	calls := f.calls
	if got := s.ProjectType(); got != ProjectGo {
		t.Fatalf("ProjectType = %s", got)
	}
	if f.calls != calls {
		t.Error("second call should use the cached detection")
	}

	// Changing the root invalidates the cache.
	f.files = []string{"package.json"}
	s.SetRoot("/other")
	if got := s.ProjectType(); got != ProjectNPM {
		t.Errorf("after SetRoot: %s", got)
	}
}

func TestProjectTypeConcurrent(t *testing.T) {
	// Reference run: how many finder calls one detection pass makes.
	ref := &mapFinder{files: []string{"pom.xml"}}
	NewDetector(ref).Detect("/work")
	singleScan := ref.calls

	f := &mapFinder{files: []string{"pom.xml"}}
	s := NewSelector(NewRegistry(), NewConfigManager(), NewDetector(f))
	s.SetRoot("/work")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := s.ProjectType(); got != ProjectMaven {
				t.Errorf("ProjectType = %s", got)
			}
		}()
	}
	wg.Wait()

	// All eight callers share exactly one underlying scan.
	if f.calls != singleScan {
		t.Errorf("finder calls = %d, want %d (one scan)", f.calls, singleScan)
	}
}

func TestSelectorDetectedProjects(t *testing.T) {
	f := &mapFinder{files: []string{"go.mod", "package.json"}}
	s := NewSelector(NewRegistry(), NewConfigManager(), NewDetector(f))
	s.SetRoot("/work")

	dp := s.DetectedProjects()
	if dp.Primary != ProjectNPM {
		t.Errorf("Primary = %s, want npm", dp.Primary)
	}
	if len(dp.Types) != 2 || dp.Types[0] != ProjectNPM || dp.Types[1] != ProjectGo {
		t.Errorf("Types = %v, want [npm go]", dp.Types)
	}

	// A manual override changes the effective project type but not the
	// workspace snapshot.
	s.SetProjectType(ProjectMaven)
	if got := s.ProjectType(); got != ProjectMaven {
		t.Errorf("ProjectType = %s, want maven", got)
	}
	if got := s.DetectedProjects(); got.Primary != ProjectNPM {
		t.Errorf("snapshot Primary = %s, want npm", got.Primary)
	}
}

func TestExecuteWithFallbackFirstSucceeds(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	npm.packages = []PackageSummary{{Name: "react"}}
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	s, _ := newTestSelector(t, npm, npms)
	s.SetProjectType(ProjectNPM)

	res, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			return a.Search(ctx, SearchOptions{Query: "react"})
		})
	if err != nil {
		t.Fatalf("ExecuteWithFallback: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Source != SourceNPMRegistry {
		t.Errorf("attempts = %+v", attempts)
	}
	if len(res.Packages) != 1 || res.Packages[0].Name != "react" {
		t.Errorf("result = %+v", res)
	}
}

func TestExecuteWithFallbackAdvances(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	npm.searchErr = pkgerrors.New(pkgerrors.ErrCodeNetwork, "registry unreachable")
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	npms.packages = []PackageSummary{{Name: "vue"}}
	s, _ := newTestSelector(t, npm, npms)
	s.SetProjectType(ProjectNPM)

	res, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			return a.Search(ctx, SearchOptions{Query: "vue"})
		})
	if err != nil {
		t.Fatalf("ExecuteWithFallback: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if attempts[0].Err == nil || attempts[1].Err != nil {
		t.Errorf("attempt errors = [%v %v]", attempts[0].Err, attempts[1].Err)
	}
	if res.Packages[0].Name != "vue" {
		t.Errorf("result = %+v", res)
	}
}

func TestExecuteWithFallbackAllFail(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	npm.searchErr = pkgerrors.New(pkgerrors.ErrCodeNetwork, "registry unreachable")
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	npms.searchErr = pkgerrors.New(pkgerrors.ErrCodeRateLimited, "slow down")
	s, _ := newTestSelector(t, npm, npms)
	s.SetProjectType(ProjectNPM)

	_, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			return a.Search(ctx, SearchOptions{Query: "x"})
		})
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeAllSourcesFailed {
		t.Errorf("code = %s", pkgerrors.GetCode(err))
	}
	if len(attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(attempts))
	}
	msg := err.Error()
	if !strings.Contains(msg, "registry unreachable") || !strings.Contains(msg, "slow down") {
		t.Errorf("aggregate message should carry every failure: %q", msg)
	}
}

func TestExecuteWithFallbackUserPin(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	npm.packages = []PackageSummary{{Name: "express"}}
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	npms.searchErr = pkgerrors.New(pkgerrors.ErrCodeNetwork, "down")
	s, _ := newTestSelector(t, npm, npms)
	s.SetProjectType(ProjectNPM)
	if err := s.SetUserSource(SourceNPMS); err != nil {
		t.Fatal(err)
	}

	_, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			return a.Search(ctx, SearchOptions{Query: "express"})
		})
	if err == nil {
		t.Fatal("pinned source failed; no fallback expected")
	}
	if len(attempts) != 1 || attempts[0].Source != SourceNPMS {
		t.Errorf("attempts = %+v, want one npms-io attempt", attempts)
	}
}

func TestExecuteWithFallbackNoSources(t *testing.T) {
	s, _ := newTestSelector(t)
	s.SetProjectType(ProjectNPM)

	_, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			t.Fatal("op should not run")
			return nil, nil
		})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeNoAdapter {
		t.Errorf("code = %s, want no-adapter", pkgerrors.GetCode(err))
	}
	if len(attempts) != 0 {
		t.Errorf("attempts = %+v", attempts)
	}
}

func TestExecuteWithFallbackPinnedUnregistered(t *testing.T) {
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	s, r := newTestSelector(t, npms)
	s.SetProjectType(ProjectNPM)
	if err := s.SetUserSource(SourceNPMS); err != nil {
		t.Fatal(err)
	}
	// The pin outlives the adapter.
	r.Unregister(SourceNPMS)

	_, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			t.Fatal("op should not run")
			return nil, nil
		})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeNoAdapter {
		t.Errorf("code = %s, want no-adapter", pkgerrors.GetCode(err))
	}
	if len(attempts) != 1 || attempts[0].Source != SourceNPMS {
		t.Errorf("attempts = %+v, want one npms-io lookup failure", attempts)
	}
}

type recordingSourceHooks struct {
	observability.NoopSourceHooks
	mu      sync.Mutex
	skipped []string
	starts  []string
}

func (r *recordingSourceHooks) OnAttemptStart(_ context.Context, source, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, source)
}

func (r *recordingSourceHooks) OnSourceSkipped(_ context.Context, source, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, source)
}

func TestExecuteWithFallbackSkipsUnregistered(t *testing.T) {
	rec := &recordingSourceHooks{}
	observability.SetSourceHooks(rec)
	t.Cleanup(observability.Reset)

	// Primary npm-registry missing; only the fallback is registered.
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	npms.packages = []PackageSummary{{Name: "react"}}
	s, _ := newTestSelector(t, npms)
	s.SetProjectType(ProjectNPM)

	_, attempts, err := ExecuteWithFallback(context.Background(), s, "search",
		func(ctx context.Context, a Adapter) (*SearchResult, error) {
			return a.Search(ctx, SearchOptions{Query: "react"})
		})
	if err != nil {
		t.Fatalf("ExecuteWithFallback: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Source != SourceNPMS {
		t.Errorf("attempts = %+v", attempts)
	}
	if len(rec.skipped) != 1 || rec.skipped[0] != string(SourceNPMRegistry) {
		t.Errorf("skipped = %v, want [npm-registry]", rec.skipped)
	}
	if len(rec.starts) != 1 || rec.starts[0] != string(SourceNPMS) {
		t.Errorf("starts = %v", rec.starts)
	}
}

func TestAdaptersForProject(t *testing.T) {
	npm := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	s, _ := newTestSelector(t, npm, npms)

	got := s.AdaptersForProject(ProjectNPM)
	if len(got) != 2 {
		t.Fatalf("got %d adapters, want 2", len(got))
	}
	// Primary first, then fallbacks.
	if got[0].Source() != SourceNPMRegistry || got[1].Source() != SourceNPMS {
		t.Errorf("order = [%s %s], want [npm-registry npms-io]", got[0].Source(), got[1].Source())
	}

	// A project with no registered adapters resolves to an empty list.
	if adapters := s.AdaptersForProject(ProjectMaven); len(adapters) != 0 {
		t.Errorf("maven adapters = %d, want 0", len(adapters))
	}
}

func TestDefaultAdapter(t *testing.T) {
	npms := newFakeAdapter(SourceNPMS, ProjectNPM)
	s, _ := newTestSelector(t, npms)

	// Primary npm-registry is unregistered; the first fallback wins.
	a, err := s.DefaultAdapter(ProjectNPM)
	if err != nil {
		t.Fatalf("DefaultAdapter: %v", err)
	}
	if a.Source() != SourceNPMS {
		t.Errorf("default = %s, want %s", a.Source(), SourceNPMS)
	}

	_, err = s.DefaultAdapter(ProjectMaven)
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeNoAdapter {
		t.Errorf("code = %s, want %s", pkgerrors.GetCode(err), pkgerrors.ErrCodeNoAdapter)
	}
}
