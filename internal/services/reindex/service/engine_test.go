package service

import (
	"context"
	"testing"
	"time"

	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	indexingdom "indexa/internal/services/indexing/domain"
	registrydom "indexa/internal/services/registry/domain"
	"indexa/internal/services/reindex/domain"
)

type memRepo struct {
	jobs     map[string]*domain.ReindexJob
	progress []float64
	statuses []domain.Status
}

func newMemRepo(jobs ...domain.ReindexJob) *memRepo {
	m := &memRepo{jobs: map[string]*domain.ReindexJob{}}
	for i := range jobs {
		j := jobs[i]
		m.jobs[j.ID] = &j
	}
	return m
}

func (m *memRepo) Insert(_ context.Context, job domain.ReindexJob) error {
	m.jobs[job.ID] = &job
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (domain.ReindexJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return domain.ReindexJob{}, perr.NotFoundf("reindex job %s not found", id)
	}
	return *j, nil
}

func (m *memRepo) List(context.Context, int, int) ([]domain.ReindexJob, int, error) {
	return nil, 0, nil
}

func (m *memRepo) UpdateProgress(_ context.Context, id string, progress float64) error {
	m.jobs[id].Progress = progress
	m.progress = append(m.progress, progress)
	return nil
}

func (m *memRepo) UpdateStatus(
	_ context.Context, id string, status domain.Status, errorMessage string,
) error {
	j, ok := m.jobs[id]
	if !ok {
		return perr.NotFoundf("reindex job %s not found", id)
	}
	j.Status = status
	j.ErrorMessage = errorMessage
	now := time.Now().UTC()
	if status == domain.StatusRunning && j.StartedAt == nil {
		j.StartedAt = &now
	}
	if status.Terminal() {
		j.CompletedAt = &now
	}
	m.statuses = append(m.statuses, status)
	return nil
}

type memLister []registrydom.DomainService

func (m memLister) ListEnabled(context.Context) ([]registrydom.DomainService, error) {
	return m, nil
}

type pagedBatcher struct {
	pages     int
	failPage  int
	perCall   []string
	callPages []int
}

func (b *pagedBatcher) BatchIndex(
	_ context.Context,
	svc registrydom.DomainService,
	entityType string,
	args indexingdom.BatchArgs,
) (indexingdom.BatchResult, error) {
	b.perCall = append(b.perCall, svc.Name+"/"+entityType)
	b.callPages = append(b.callPages, args.Page)
	if b.failPage > 0 && args.Page == b.failPage {
		return indexingdom.BatchResult{}, perr.Upstreamf("batch fetch blew up")
	}
	total := args.PerPage
	if args.Page >= b.pages {
		total = args.PerPage - 1
	}
	return indexingdom.BatchResult{Indexed: total, TotalInPage: total}, nil
}

func newEngine(repo *memRepo, lister memLister, batcher *pagedBatcher) *Svc {
	return &Svc{
		Repo:     repo,
		services: lister,
		indexer:  batcher,
		log:      *logger.Named("reindex"),
	}
}

func pendingJob(id string) domain.ReindexJob {
	return domain.ReindexJob{
		ID:          id,
		EntityTypes: []string{"pets"},
		Mode:        domain.ModeUpsert,
		Status:      domain.StatusPending,
	}
}

func enabledService(name string, domains ...string) registrydom.DomainService {
	return registrydom.DomainService{ID: name, Name: name, Domains: domains, Enabled: true}
}

func TestExecuteMissingJobIsFatal(t *testing.T) {
	s := newEngine(newMemRepo(), memLister{}, &pagedBatcher{pages: 1})
	err := s.Execute(context.Background(), "nope")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExecuteRefusesTerminalJob(t *testing.T) {
	job := pendingJob("j1")
	job.Status = domain.StatusCancelled
	s := newEngine(newMemRepo(job), memLister{}, &pagedBatcher{pages: 1})

	err := s.Execute(context.Background(), "j1")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestExecuteHappyPath(t *testing.T) {
	repo := newMemRepo(pendingJob("j1"))
	batcher := &pagedBatcher{pages: 3}
	s := newEngine(repo, memLister{enabledService("petstore", "com.petstore")}, batcher)

	if err := s.Execute(context.Background(), "j1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	job := *repo.jobs["j1"]
	if job.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", job.Status)
	}
	if job.Progress != 1.0 {
		t.Fatalf("progress = %v, want 1.0", job.Progress)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Fatal("started_at and completed_at must be set")
	}
	if len(batcher.callPages) != 3 {
		t.Fatalf("expected 3 pages, got %v", batcher.callPages)
	}
	// per page estimates stay capped below completion
	for _, p := range repo.progress[:len(repo.progress)-1] {
		if p > 0.9 {
			t.Fatalf("mid-run progress %v exceeds cap", p)
		}
	}
	for i := 1; i < len(repo.progress); i++ {
		if repo.progress[i] < repo.progress[i-1] {
			t.Fatalf("progress not monotonic: %v", repo.progress)
		}
	}
}

func TestExecuteProgressCap(t *testing.T) {
	repo := newMemRepo(pendingJob("j1"))
	// 120 full pages would put the raw estimate over 1.0
	batcher := &pagedBatcher{pages: 120}
	s := newEngine(repo, memLister{enabledService("petstore", "com.petstore")}, batcher)

	if err := s.Execute(context.Background(), "j1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, p := range repo.progress[:len(repo.progress)-1] {
		if p > 0.9 {
			t.Fatalf("mid-run progress %v exceeds cap", p)
		}
	}
	if repo.jobs["j1"].Progress != 1.0 {
		t.Fatalf("final progress = %v, want 1.0", repo.jobs["j1"].Progress)
	}
}

func TestExecuteNoMatchingServicesCompletes(t *testing.T) {
	job := pendingJob("j1")
	job.Domains = []string{"org.elsewhere"}
	repo := newMemRepo(job)
	batcher := &pagedBatcher{pages: 1}
	s := newEngine(repo, memLister{enabledService("petstore", "com.petstore")}, batcher)

	if err := s.Execute(context.Background(), "j1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(batcher.perCall) != 0 {
		t.Fatal("filtered out services must not be batched")
	}
	if got := *repo.jobs["j1"]; got.Status != domain.StatusCompleted || got.Progress != 1.0 {
		t.Fatalf("expected completed at 1.0, got %s %v", got.Status, got.Progress)
	}
}

func TestExecuteEmptyEntityTypesContributesNothing(t *testing.T) {
	job := pendingJob("j1")
	job.EntityTypes = nil
	repo := newMemRepo(job)
	batcher := &pagedBatcher{pages: 1}
	s := newEngine(repo, memLister{enabledService("petstore", "com.petstore")}, batcher)

	if err := s.Execute(context.Background(), "j1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(batcher.perCall) != 0 {
		t.Fatal("no entity types means no batch calls")
	}
	if repo.jobs["j1"].Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", repo.jobs["j1"].Status)
	}
}

func TestExecuteDomainFilterOverlapsBothDirections(t *testing.T) {
	job := pendingJob("j1")
	job.Domains = []string{"com.petstore.pets"}
	repo := newMemRepo(job)
	batcher := &pagedBatcher{pages: 1}
	// the registered domain is shorter than the filter, still overlaps
	s := newEngine(repo, memLister{
		enabledService("short", "com.petstore"),
		enabledService("other", "org.elsewhere"),
	}, batcher)

	if err := s.Execute(context.Background(), "j1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(batcher.perCall) != 1 || batcher.perCall[0] != "short/pets" {
		t.Fatalf("unexpected batch calls %v", batcher.perCall)
	}
}

func TestExecuteFailureRecordsBeforePropagating(t *testing.T) {
	repo := newMemRepo(pendingJob("j1"))
	batcher := &pagedBatcher{pages: 5, failPage: 2}
	s := newEngine(repo, memLister{enabledService("petstore", "com.petstore")}, batcher)

	err := s.Execute(context.Background(), "j1")
	if err == nil {
		t.Fatal("expected the batch error to propagate")
	}
	job := *repo.jobs["j1"]
	if job.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want failed", job.Status)
	}
	if job.ErrorMessage == "" {
		t.Fatal("error_message must be recorded")
	}
	if job.CompletedAt == nil {
		t.Fatal("completed_at must be set on failure")
	}
}

func TestCancelPendingThenRunRejected(t *testing.T) {
	repo := newMemRepo(pendingJob("j1"))
	s := newEngine(repo, memLister{}, &pagedBatcher{pages: 1})

	if err := s.Cancel(context.Background(), "j1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if repo.jobs["j1"].Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", repo.jobs["j1"].Status)
	}
	err := s.Execute(context.Background(), "j1")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument after cancel, got %v", err)
	}
}

func TestCancelTerminalJobRejected(t *testing.T) {
	job := pendingJob("j1")
	job.Status = domain.StatusCompleted
	s := newEngine(newMemRepo(job), memLister{}, &pagedBatcher{pages: 1})

	err := s.Cancel(context.Background(), "j1")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestStatusPredicates(t *testing.T) {
	if !domain.StatusPending.Cancellable() || !domain.StatusRunning.Cancellable() {
		t.Fatal("pending and running must be cancellable")
	}
	for _, st := range []domain.Status{domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled} {
		if st.Cancellable() {
			t.Fatalf("%s must not be cancellable", st)
		}
		if !st.Terminal() {
			t.Fatalf("%s must be terminal", st)
		}
	}
}
