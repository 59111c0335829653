package adapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"

	credentialcommand "github.com/goliatone/go-credentials/adapters/gocommand"
	"github.com/goliatone/go-credentials/adapters/gojob"
	"github.com/goliatone/go-credentials/adapters/gologger"
	msgcommand "github.com/goliatone/go-credentials/command"
	"github.com/goliatone/go-credentials/core"
)

// Exercises the sweep -> enqueue -> worker pipeline end to end across the
// go-job and go-logger bridges using an in-memory queue.
func TestRuntimeCompatibility_RotationPipeline(t *testing.T) {
	ctx := context.Background()

	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}
	_, resolvedLogger, jobProvider, jobLogger := gologger.ResolveForJob("credentials.rotation", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	bound := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	rotated := map[string]int{}
	svc := &pipelineRotationService{
		due: []core.ToolGroupWithCredentials{
			{ToolGroup: core.ToolGroup{ID: "tg_1"}},
			{ToolGroup: core.ToolGroup{ID: "tg_2"}},
		},
		onRotate: func(toolGroupID string) {
			rotated[toolGroupID]++
		},
	}

	memQueue := &memoryQueue{}
	sweeper, err := gojob.NewRotationSweeper(svc, memQueue, gojob.WithSweeperLogger(resolvedLogger))
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	enqueued, err := sweeper.Sweep(ctx, bound)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if enqueued != 2 {
		t.Fatalf("expected 2 rotation jobs, got %d", enqueued)
	}

	worker, err := gojob.NewRotationWorker(svc, memQueue, gojob.RetryPolicy{MaxAttempts: 3}, gojob.WithWorkerLogger(resolvedLogger))
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	for i := 0; i < enqueued; i++ {
		if err := worker.ProcessOne(ctx); err != nil {
			t.Fatalf("process job %d: %v", i, err)
		}
	}

	if rotated["tg_1"] != 1 || rotated["tg_2"] != 1 {
		t.Fatalf("expected each due tool group rotated exactly once, got %#v", rotated)
	}
	if memQueue.pendingCount() != 0 {
		t.Fatalf("expected queue to drain, %d left", memQueue.pendingCount())
	}
}

// Exercises the credential mutation commands dispatched through the
// go-command registry bridge.
func TestRuntimeCompatibility_CommandDispatch(t *testing.T) {
	svc := &pipelineRotationMutatingService{}
	adapter := credentialcommand.NewRegistryAdapter(command.NewRegistry())

	subscriptions, err := credentialcommand.RegisterMutations(adapter, svc)
	if err != nil {
		t.Fatalf("register mutations: %v", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize adapter: %v", err)
	}

	if err := credentialcommand.Dispatch(context.Background(), msgcommand.RotateUserCredentialMessage{
		Request: core.RotateCredentialRequest{ToolGroupID: "tg_1"},
	}); err != nil {
		t.Fatalf("dispatch rotation command: %v", err)
	}
	if svc.rotateCalls != 1 || svc.lastToolGroupID != "tg_1" {
		t.Fatalf("expected rotation command to reach the service, calls=%d id=%q", svc.rotateCalls, svc.lastToolGroupID)
	}

	if err := credentialcommand.Dispatch(context.Background(), msgcommand.StartBrokeringMessage{
		Request: core.StartBrokeringRequest{ToolGroupID: "tg_1"},
	}); err != nil {
		t.Fatalf("dispatch start brokering command: %v", err)
	}
	if svc.startCalls != 1 {
		t.Fatalf("expected brokering command to reach the service")
	}
}

type memoryQueue struct {
	pending []*job.ExecutionMessage
}

func (q *memoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.pending = append(q.pending, msg)
	return nil
}

func (q *memoryQueue) Dequeue(context.Context) (queue.Delivery, error) {
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return &memoryDelivery{queue: q, msg: msg}, nil
}

func (q *memoryQueue) pendingCount() int {
	return len(q.pending)
}

type memoryDelivery struct {
	queue *memoryQueue
	msg   *job.ExecutionMessage
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	return nil
}

func (d *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	if opts.Requeue {
		d.queue.pending = append(d.queue.pending, d.msg)
	}
	return nil
}

type pipelineRotationService struct {
	due      []core.ToolGroupWithCredentials
	onRotate func(toolGroupID string)
}

func (s *pipelineRotationService) ListDueForRotation(_ context.Context, req core.ListDueForRotationRequest) ([]core.ToolGroupWithCredentials, int, error) {
	if req.Page.Offset >= len(s.due) {
		return nil, len(s.due), nil
	}
	return s.due[req.Page.Offset:], len(s.due), nil
}

func (s *pipelineRotationService) RunRotationWithRetry(_ context.Context, req core.RotateCredentialRequest, _ core.RotationRunOptions) (core.RotationRunResult, error) {
	if s.onRotate != nil {
		s.onRotate(req.ToolGroupID)
	}
	return core.RotationRunResult{Attempts: 1}, nil
}

type pipelineRotationMutatingService struct {
	rotateCalls     int
	startCalls      int
	lastToolGroupID string
}

func (s *pipelineRotationMutatingService) CreateResourceServerCredential(context.Context, core.CreateResourceServerCredentialRequest) (core.SerializedCredential, error) {
	return core.SerializedCredential{}, nil
}

func (s *pipelineRotationMutatingService) CreateUserCredential(context.Context, core.CreateUserCredentialRequest) (core.SerializedCredential, error) {
	return core.SerializedCredential{}, nil
}

func (s *pipelineRotationMutatingService) UpdateResourceServerCredential(context.Context, string, core.UpdateCredentialInput) (core.SerializedCredential, error) {
	return core.SerializedCredential{}, nil
}

func (s *pipelineRotationMutatingService) UpdateUserCredential(context.Context, string, core.UpdateCredentialInput) (core.SerializedCredential, error) {
	return core.SerializedCredential{}, nil
}

func (s *pipelineRotationMutatingService) DeleteResourceServerCredential(context.Context, string) error {
	return nil
}

func (s *pipelineRotationMutatingService) DeleteUserCredential(context.Context, string) error {
	return nil
}

func (s *pipelineRotationMutatingService) CreateToolGroup(context.Context, core.CreateToolGroupRequest) (core.ToolGroup, error) {
	return core.ToolGroup{}, nil
}

func (s *pipelineRotationMutatingService) StartBrokering(context.Context, core.StartBrokeringRequest) (core.BrokerResult, error) {
	s.startCalls++
	return core.BrokerResult{}, nil
}

func (s *pipelineRotationMutatingService) ResumeBrokering(context.Context, core.ResumeBrokeringRequest) (core.UserCredentialRecord, error) {
	return core.UserCredentialRecord{}, nil
}

func (s *pipelineRotationMutatingService) DeleteBrokerState(context.Context, string) error {
	return nil
}

func (s *pipelineRotationMutatingService) RotateUserCredential(_ context.Context, req core.RotateCredentialRequest) (core.SerializedCredential, error) {
	s.rotateCalls++
	s.lastToolGroupID = req.ToolGroupID
	return core.SerializedCredential{ID: "cred_" + req.ToolGroupID}, nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }
