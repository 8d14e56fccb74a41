package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{BadRequestError(nil, "bad"), http.StatusBadRequest},
		{ResourceNotFoundError(nil, "missing"), http.StatusNotFound},
		{ConflictError(nil, "dup"), http.StatusConflict},
		{UnavailableError(nil, "down"), http.StatusServiceUnavailable},
		{GeneralError(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		var svcErr *ServiceError
		if !errors.As(tc.err, &svcErr) {
			t.Fatalf("expected ServiceError, got %T", tc.err)
		}
		if got := svcErr.StatusCode(); got != tc.want {
			t.Fatalf("StatusCode() = %d, want %d", got, tc.want)
		}
	}
}

func TestIs_MatchesCategory(t *testing.T) {
	err := ConflictError(errors.New("dup"), "already exists")
	if !Is(err, CategoryDataConflict) {
		t.Fatal("expected CategoryDataConflict match")
	}
	if Is(err, CategoryResourceNotFound) {
		t.Fatal("unexpected CategoryResourceNotFound match")
	}
	if Is(errors.New("plain"), CategoryDataConflict) {
		t.Fatal("plain error must not match any category")
	}
}

func TestConflictWithDataError_CarriesData(t *testing.T) {
	existing := map[string]string{"id": "abc"}
	err := ConflictWithDataError(errors.New("dup"), "already exists", existing)

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if svcErr.Data == nil {
		t.Fatal("expected Data to carry the existing record")
	}
	if svcErr.Message != "already exists" {
		t.Fatalf("Message = %q, want %q", svcErr.Message, "already exists")
	}
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := ResourceNotFoundError(cause, "Vault not found")
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
}

func TestGeneralError_HidesInternalMessage(t *testing.T) {
	err := GeneralError(errors.New("pq: syntax error at or near"))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if svcErr.Message != "Internal Server Error" {
		t.Fatalf("Message = %q, internal detail must not leak", svcErr.Message)
	}
}
