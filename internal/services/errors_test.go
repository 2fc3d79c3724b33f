package services_test

import (
	"errors"
	"strings"
	"testing"

	"carousel/internal/services"
)

func TestWrapTagsMarkerAndPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrRemoteAPI, "instagram", "publish container", "retry later", cause)

	if !errors.Is(err, services.ErrRemoteAPI) {
		t.Fatalf("expected marker in chain, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	message := err.Error()
	for _, fragment := range []string{"instagram", "publish container", "retry later", "connection reset"} {
		if !strings.Contains(message, fragment) {
			t.Fatalf("expected %q in message %q", fragment, message)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrMissingCredentials, "workflow", "publish", "", nil)
	if !errors.Is(err, services.ErrMissingCredentials) {
		t.Fatalf("expected marker in chain, got %v", err)
	}
	if errors.Is(err, services.ErrRemoteAPI) {
		t.Fatal("unrelated marker should not match")
	}
}
