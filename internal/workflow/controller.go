// Package workflow owns the project lifecycle and status reconciliation
// decision logic: when to create vs. reuse a provider project, how to submit
// prompts without spawning duplicates, and how to merge polled completion
// state into stored records.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"designgen-backend/internal/models"
	"designgen-backend/internal/store"
	"designgen-backend/internal/v0"
)

// Provider is the thin transport to the remote generation service. Every call
// carries its own bounded deadline via ctx.
type Provider interface {
	EnsureProject(ctx context.Context, name string) (string, error)
	SubmitPrompt(ctx context.Context, projectID, prompt string) (string, error)
	GetLatestChat(ctx context.Context, projectID string) (*v0.ChatSummary, error)
	GetChatStatus(ctx context.Context, chatID string) (*models.ChatStatus, error)
}

// Notifier receives terminal-state transitions. Implementations must be safe
// for concurrent use; calls are best-effort and never fail the workflow.
type Notifier interface {
	GenerationCompleted(rec models.GenerationRecord)
	GenerationFailed(rec models.GenerationRecord)
}

// Timeouts bounds each provider round trip independently so a slow generation
// step never blocks the cheap project-creation step.
type Timeouts struct {
	Ensure time.Duration
	Submit time.Duration
	Status time.Duration
}

func (t *Timeouts) applyDefaults() {
	if t.Ensure <= 0 {
		t.Ensure = 10 * time.Second
	}
	if t.Submit <= 0 {
		t.Submit = 15 * time.Second
	}
	if t.Status <= 0 {
		t.Status = 10 * time.Second
	}
}

type Controller struct {
	provider Provider
	records  store.RecordStore
	notifier Notifier
	timeouts Timeouts
	now      func() time.Time

	mu       sync.Mutex
	subjects map[string]*sync.Mutex
}

// NewController builds the orchestration core. notifier may be nil.
func NewController(provider Provider, records store.RecordStore, timeouts Timeouts, notifier Notifier) *Controller {
	timeouts.applyDefaults()
	return &Controller{
		provider: provider,
		records:  records,
		notifier: notifier,
		timeouts: timeouts,
		now:      time.Now,
		subjects: make(map[string]*sync.Mutex),
	}
}

// Submit submits a prompt for generation. At most one provider project is
// ever created per subject, and the call returns quickly even when the
// generation step itself is slow: a timed-out submission is presumed accepted
// by the provider and discovered later via RefreshStatus.
func (c *Controller) Submit(ctx context.Context, subjectID, prompt string) (models.WorkflowView, error) {
	if subjectID == "" || prompt == "" {
		return models.WorkflowView{}, fmt.Errorf("subject id and prompt are required")
	}

	unlock := c.lockSubject(subjectID)
	defer unlock()

	rec, err := c.loadRecord(ctx, subjectID)
	if err != nil {
		return models.WorkflowView{}, err
	}

	// Duplicate click protection: an identical prompt is rejected while the
	// previous submission is still in flight. A changed prompt supersedes it.
	if rec.Status == models.StatusInProgress && rec.LastPrompt == prompt {
		return models.WorkflowView{}, ErrGenerationInFlight
	}

	projectCreated := false
	if rec.ProjectID == "" {
		ensureCtx, cancel := context.WithTimeout(ctx, c.timeouts.Ensure)
		projectID, err := c.provider.EnsureProject(ensureCtx, subjectID)
		cancel()
		if err != nil {
			return models.WorkflowView{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		rec.ProjectID = projectID
		projectCreated = true
	}

	submitCtx, cancel := context.WithTimeout(ctx, c.timeouts.Submit)
	chatID, err := c.provider.SubmitPrompt(submitCtx, rec.ProjectID, prompt)
	cancel()
	if err != nil && !v0.IsTimeout(err) {
		// Hard failure. Persist a freshly created project id so a retry
		// reuses it instead of creating a second project; everything else
		// stays exactly as it was.
		if projectCreated {
			keep := rec
			keep.UpdatedAt = c.now()
			// Best-effort; the submission error is what the caller sees.
			_ = c.records.Upsert(ctx, keep)
		}
		return models.WorkflowView{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// A timeout here is fire-and-forget partial success: the chat id is
	// unknown for now and will be discovered by RefreshStatus.
	if chatID != "" {
		rec.LastChatID = chatID
	}
	rec.LastPrompt = prompt
	rec.Status = models.StatusInProgress
	rec.ResultURL = ""
	rec.UpdatedAt = c.now()

	if err := c.records.Upsert(ctx, rec); err != nil {
		return models.WorkflowView{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return models.ViewFromRecord(rec, prompt), nil
}

// RefreshStatus polls the provider for the freshest known outcome and
// reconciles it into storage. It may be called any number of times,
// concurrently or sequentially, and converges to the same terminal state.
func (c *Controller) RefreshStatus(ctx context.Context, subjectID string) (models.WorkflowView, error) {
	if subjectID == "" {
		return models.WorkflowView{}, fmt.Errorf("subject id is required")
	}

	unlock := c.lockSubject(subjectID)
	defer unlock()

	rec, err := c.loadRecord(ctx, subjectID)
	if err != nil {
		return models.WorkflowView{}, err
	}
	if rec.ProjectID == "" {
		return models.ViewFromRecord(rec, ""), nil
	}

	fresh, err := c.poll(ctx, rec)
	if err != nil {
		return models.WorkflowView{}, err
	}
	if fresh == nil {
		// The provider knows the project but no chat yet; nothing to merge.
		return models.ViewFromRecord(rec, ""), nil
	}

	next := Reconcile(rec, *fresh, c.now())
	if err := c.records.Upsert(ctx, next); err != nil {
		if !errors.Is(err, store.ErrVersionConflict) {
			return models.WorkflowView{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		// A concurrent writer (another instance) got there first. Re-read and
		// reconcile once more; both merges converge on the same poll.
		rec, err = c.loadRecord(ctx, subjectID)
		if err != nil {
			return models.WorkflowView{}, err
		}
		next = Reconcile(rec, *fresh, c.now())
		if err := c.records.Upsert(ctx, next); err != nil {
			return models.WorkflowView{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	c.notifyTransition(rec, next)

	return models.ViewFromRecord(next, ""), nil
}

// Get returns the stored view without contacting the provider.
func (c *Controller) Get(ctx context.Context, subjectID string) (models.WorkflowView, error) {
	rec, err := c.loadRecord(ctx, subjectID)
	if err != nil {
		return models.WorkflowView{}, err
	}
	return models.ViewFromRecord(rec, ""), nil
}

func (c *Controller) poll(ctx context.Context, rec models.GenerationRecord) (*models.ChatStatus, error) {
	latestCtx, cancel := context.WithTimeout(ctx, c.timeouts.Status)
	summary, err := c.provider.GetLatestChat(latestCtx, rec.ProjectID)
	cancel()
	if err != nil {
		if errors.Is(err, v0.ErrNoChats) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStatusCheckFailed, err)
	}

	statusCtx, cancel := context.WithTimeout(ctx, c.timeouts.Status)
	fresh, err := c.provider.GetChatStatus(statusCtx, summary.ChatID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatusCheckFailed, err)
	}

	return fresh, nil
}

func (c *Controller) loadRecord(ctx context.Context, subjectID string) (models.GenerationRecord, error) {
	rec, err := c.records.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.NewGenerationRecord(subjectID), nil
		}
		return models.GenerationRecord{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return *rec, nil
}

func (c *Controller) notifyTransition(prev, next models.GenerationRecord) {
	if c.notifier == nil || prev.Status.Terminal() || !next.Status.Terminal() {
		return
	}
	switch next.Status {
	case models.StatusCompleted:
		go c.notifier.GenerationCompleted(next)
	case models.StatusFailed:
		go c.notifier.GenerationFailed(next)
	}
}

func (c *Controller) lockSubject(subjectID string) func() {
	c.mu.Lock()
	m, ok := c.subjects[subjectID]
	if !ok {
		m = &sync.Mutex{}
		c.subjects[subjectID] = m
	}
	c.mu.Unlock()

	m.Lock()
	return m.Unlock
}
