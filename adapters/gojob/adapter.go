package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-credentials/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	JobIDRotationSweep = "credentials.rotation.sweep"
	JobIDRotate        = "credentials.rotation.rotate"

	rotationParamToolGroupID = "tool_group_id"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// Normalize enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) Normalize(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// RotationService is the slice of the core service the rotation jobs drive.
type RotationService interface {
	ListDueForRotation(ctx context.Context, req core.ListDueForRotationRequest) ([]core.ToolGroupWithCredentials, int, error)
	RunRotationWithRetry(ctx context.Context, req core.RotateCredentialRequest, opts core.RotationRunOptions) (core.RotationRunResult, error)
}

// RotationMessage builds the queue message that asks a worker to rotate one
// tool group's user credential. The idempotency key folds in the sweep bound
// so re-running the same sweep does not double-enqueue.
func RotationMessage(toolGroupID string, sweepBound time.Time) *job.ExecutionMessage {
	toolGroupID = strings.TrimSpace(toolGroupID)
	return &job.ExecutionMessage{
		JobID: JobIDRotate,
		Parameters: map[string]any{
			rotationParamToolGroupID: toolGroupID,
		},
		IdempotencyKey: fmt.Sprintf("%s::%s::%s", JobIDRotate, toolGroupID, sweepBound.UTC().Format(time.RFC3339)),
	}
}

// ToolGroupIDFromMessage extracts the rotation target from a queue message.
func ToolGroupIDFromMessage(msg *job.ExecutionMessage) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("gojob: execution message is required")
	}
	if msg.JobID != JobIDRotate {
		return "", fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	raw, ok := msg.Parameters[rotationParamToolGroupID]
	if !ok {
		return "", fmt.Errorf("gojob: rotation message is missing the tool group id")
	}
	toolGroupID, ok := raw.(string)
	if !ok || strings.TrimSpace(toolGroupID) == "" {
		return "", fmt.Errorf("gojob: rotation message carries an invalid tool group id")
	}
	return strings.TrimSpace(toolGroupID), nil
}

// RotationSweeper pages through due tool groups and enqueues one rotation
// job per group.
type RotationSweeper struct {
	service  RotationService
	enqueuer queue.Enqueuer
	logger   glog.Logger
	pageSize int
	status   *core.ToolGroupStatus
}

type SweeperOption func(*RotationSweeper)

func WithSweeperLogger(logger glog.Logger) SweeperOption {
	return func(s *RotationSweeper) {
		s.logger = logger
	}
}

func WithSweeperPageSize(pageSize int) SweeperOption {
	return func(s *RotationSweeper) {
		s.pageSize = pageSize
	}
}

func WithSweeperStatus(status core.ToolGroupStatus) SweeperOption {
	return func(s *RotationSweeper) {
		s.status = &status
	}
}

func NewRotationSweeper(service RotationService, enqueuer queue.Enqueuer, opts ...SweeperOption) (*RotationSweeper, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: rotation service is required")
	}
	if enqueuer == nil {
		return nil, fmt.Errorf("gojob: enqueuer is required")
	}
	sweeper := &RotationSweeper{
		service:  service,
		enqueuer: enqueuer,
		pageSize: 50,
	}
	for _, opt := range opts {
		opt(sweeper)
	}
	if sweeper.pageSize <= 0 {
		sweeper.pageSize = 50
	}
	_, sweeper.logger = glog.Resolve("credentials.rotation.sweep", nil, sweeper.logger)
	return sweeper, nil
}

// Sweep enqueues a rotation job for every tool group whose rotation deadline
// falls at or before bound. Returns the number of jobs enqueued.
func (s *RotationSweeper) Sweep(ctx context.Context, bound time.Time) (int, error) {
	if s == nil || s.service == nil || s.enqueuer == nil {
		return 0, fmt.Errorf("gojob: rotation sweeper is not configured")
	}
	if bound.IsZero() {
		bound = time.Now().UTC()
	}

	enqueued := 0
	offset := 0
	for {
		groups, total, err := s.service.ListDueForRotation(ctx, core.ListDueForRotationRequest{
			Before: bound,
			Status: s.status,
			Page:   core.Pagination{Limit: s.pageSize, Offset: offset},
		})
		if err != nil {
			return enqueued, err
		}
		for _, group := range groups {
			msg := RotationMessage(group.ToolGroup.ID, bound)
			if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
				return enqueued, fmt.Errorf("gojob: enqueue rotation for tool group %q: %w", group.ToolGroup.ID, err)
			}
			enqueued++
		}
		offset += len(groups)
		if len(groups) == 0 || offset >= total {
			break
		}
	}

	if s.logger != nil {
		s.logger.Info("rotation sweep complete", "bound", bound, "enqueued", enqueued)
	}
	return enqueued, nil
}

// RotationWorker consumes rotation jobs and drives the retrying rotation
// runner. Unrecoverable failures dead-letter instead of requeueing.
type RotationWorker struct {
	service  RotationService
	dequeuer queue.Dequeuer
	policy   RetryPolicy
	logger   glog.Logger
	runOpts  core.RotationRunOptions
}

type WorkerOption func(*RotationWorker)

func WithWorkerLogger(logger glog.Logger) WorkerOption {
	return func(w *RotationWorker) {
		w.logger = logger
	}
}

func WithWorkerRunOptions(opts core.RotationRunOptions) WorkerOption {
	return func(w *RotationWorker) {
		w.runOpts = opts
	}
}

func NewRotationWorker(service RotationService, dequeuer queue.Dequeuer, policy RetryPolicy, opts ...WorkerOption) (*RotationWorker, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: rotation service is required")
	}
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	worker := &RotationWorker{
		service:  service,
		dequeuer: dequeuer,
		policy:   policy,
	}
	for _, opt := range opts {
		opt(worker)
	}
	_, worker.logger = glog.Resolve("credentials.rotation.worker", nil, worker.logger)
	return worker, nil
}

// ProcessOne dequeues a single rotation job and executes it, acking on
// success and nacking under the retry policy on failure.
func (w *RotationWorker) ProcessOne(ctx context.Context) error {
	if w == nil || w.service == nil || w.dequeuer == nil {
		return fmt.Errorf("gojob: rotation worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}

	toolGroupID, err := ToolGroupIDFromMessage(delivery.Message())
	if err != nil {
		return delivery.Nack(ctx, w.policy.Normalize(queue.NackOptions{
			DeadLetter: true,
			Reason:     err.Error(),
		}, w.policy.MaxAttempts))
	}

	result, runErr := w.service.RunRotationWithRetry(ctx, core.RotateCredentialRequest{
		ToolGroupID: toolGroupID,
	}, w.runOpts)
	if runErr == nil {
		if w.logger != nil {
			w.logger.Info("rotation complete", "tool_group_id", toolGroupID, "attempts", result.Attempts)
		}
		return delivery.Ack(ctx)
	}

	if w.logger != nil {
		w.logger.Error("rotation failed", "tool_group_id", toolGroupID, "attempts", result.Attempts, "error", runErr)
	}
	nack := queue.NackOptions{
		Requeue: true,
		Reason:  runErr.Error(),
	}
	if core.IsInvalidRequest(runErr) || core.IsNotFound(runErr) {
		nack.Requeue = false
		nack.DeadLetter = true
	}
	return delivery.Nack(ctx, w.policy.Normalize(nack, result.Attempts))
}
