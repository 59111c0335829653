package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestObserveOperation_RecordsMetricsWithTags(t *testing.T) {
	recorder := newRecordingMetrics()
	service := &Service{metricsRecorder: recorder}
	ctx := context.Background()

	service.observeOperation(ctx, time.Now(), "brokering_start", nil, map[string]any{
		"provider_id":   "google_mail",
		"tool_group_id": "tg_1",
	})

	if recorder.counters["credentials.brokering_start.total"] != 1 {
		t.Fatalf("expected a counter increment, got %v", recorder.counters)
	}
	if _, ok := recorder.histograms["credentials.brokering_start.duration_ms"]; !ok {
		t.Fatalf("expected a duration histogram, got %v", recorder.histograms)
	}

	tags := recorder.tags["credentials.brokering_start.total"]
	if tags["operation"] != "brokering_start" || tags["status"] != "success" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if tags["provider_id"] != "google_mail" || tags["tool_group_id"] != "tg_1" {
		t.Fatalf("traceability fields must become tags, got %v", tags)
	}
}

func TestObserveOperation_FailureStatus(t *testing.T) {
	recorder := newRecordingMetrics()
	service := &Service{metricsRecorder: recorder}

	service.observeOperation(context.Background(), time.Now(), "Brokering Resume", errors.New("boom"), nil)

	tags := recorder.tags["credentials.brokering_resume.total"]
	if tags == nil {
		t.Fatalf("expected normalized operation name, got %v", recorder.tags)
	}
	if tags["status"] != "failure" {
		t.Fatalf("expected failure status, got %v", tags)
	}
}

func TestObserveOperation_DoesNotTagAbsentFields(t *testing.T) {
	recorder := newRecordingMetrics()
	service := &Service{metricsRecorder: recorder}

	service.observeOperation(context.Background(), time.Now(), "credential_inject", nil, map[string]any{
		"provider_id":     "google_mail",
		"credential_type": "",
	})

	tags := recorder.tags["credentials.credential_inject.total"]
	if _, ok := tags["credential_type"]; ok {
		t.Fatalf("blank fields must not become tags, got %v", tags)
	}
	if _, ok := tags["tool_group_id"]; ok {
		t.Fatalf("absent fields must not become tags, got %v", tags)
	}
}

func TestServiceOperations_EmitMetrics(t *testing.T) {
	recorder := newRecordingMetrics()
	env, err := newTestServiceEnv(
		[]Provider{newAuthCodeTestProvider("google_mail")},
		WithMetricsRecorder(recorder),
	)
	if err != nil {
		t.Fatalf("test env: %v", err)
	}

	_, err = env.service.CreateResourceServerCredential(context.Background(), CreateResourceServerCredentialRequest{
		ProviderID: "google_mail",
		Credential: OAuth2AuthorizationCodeFlowResourceServerCredential{
			ClientID:     "client_1",
			ClientSecret: "secret_1",
			RedirectURI:  "https://app.example.test/callback",
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if recorder.counters["credentials.resource_server_credential_create.total"] != 1 {
		t.Fatalf("expected operation counter, got %v", recorder.counters)
	}
	tags := recorder.tags["credentials.resource_server_credential_create.total"]
	if tags["status"] != "success" || tags["provider_id"] != "google_mail" {
		t.Fatalf("unexpected tags %v", tags)
	}
}

func TestFlattenFields_SortsKeys(t *testing.T) {
	args := flattenFields(map[string]any{"zeta": 1, "alpha": 2, "mike": 3})
	if len(args) != 6 {
		t.Fatalf("expected key/value pairs, got %v", args)
	}
	if args[0] != "alpha" || args[2] != "mike" || args[4] != "zeta" {
		t.Fatalf("expected deterministic ordering, got %v", args)
	}
	if flattenFields(nil) != nil {
		t.Fatalf("empty fields flatten to nil")
	}
}

func TestNormalizeOperation(t *testing.T) {
	tests := map[string]string{
		"  Brokering Start ": "brokering_start",
		"rotation-due":       "rotation_due",
		"credential_inject":  "credential_inject",
	}
	for input, want := range tests {
		if got := normalizeOperation(input); got != want {
			t.Fatalf("normalize %q: expected %q, got %q", input, want, got)
		}
	}
}
