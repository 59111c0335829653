package command

import (
	"context"
	"testing"

	"github.com/goliatone/go-credentials/core"
	goerrors "github.com/goliatone/go-errors"
)

func TestStartBrokeringMessage_ValidateReturnsRichError(t *testing.T) {
	err := (StartBrokeringMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.CredentialsErrorInvalidRequest {
		t.Fatalf("expected %q text code, got %q", core.CredentialsErrorInvalidRequest, rich.TextCode)
	}
}

func TestStartBrokeringCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *StartBrokeringCommand
	err := cmd.Execute(context.Background(), StartBrokeringMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
