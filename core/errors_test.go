package core

import (
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestServiceErrorMapper_Sentinels(t *testing.T) {
	cases := []struct {
		err      error
		textCode string
		status   int
	}{
		{ErrSecretMissing, ServiceErrorSecretMissing, http.StatusUnauthorized},
		{ErrSecretInvalid, ServiceErrorSecretInvalid, http.StatusUnauthorized},
		{ErrEventTypesRequired, ServiceErrorBadInput, http.StatusBadRequest},
		{ErrTriggerIDRequired, ServiceErrorBadInput, http.StatusBadRequest},
		{errors.New("webhook not found"), ServiceErrorNotFound, http.StatusNotFound},
		{errors.New("too many requests"), ServiceErrorRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		mapped := DefaultErrorMapper(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapped error for %v", tc.err)
		}
		if mapped.TextCode != tc.textCode || mapped.Code != tc.status {
			t.Fatalf("%v: expected %s/%d, got %s/%d", tc.err, tc.textCode, tc.status, mapped.TextCode, mapped.Code)
		}
	}
}

func TestServiceErrorMapper_KeepsRichErrors(t *testing.T) {
	source := goerrors.New("upstream failed", goerrors.CategoryExternal)
	mapped := DefaultErrorMapper(source)
	if mapped.TextCode != ServiceErrorExternalFailure || mapped.Code != http.StatusBadGateway {
		t.Fatalf("expected external envelope, got %s/%d", mapped.TextCode, mapped.Code)
	}
	if mapped.Message != "upstream failed" {
		t.Fatalf("expected message preserved, got %q", mapped.Message)
	}
}

func TestHTTPStatusAndIsNotFound(t *testing.T) {
	if HTTPStatus(nil) != http.StatusOK {
		t.Fatalf("expected 200 for nil error")
	}
	notFound := goerrors.New("missing", goerrors.CategoryNotFound).WithCode(http.StatusNotFound)
	if !IsNotFound(notFound) {
		t.Fatalf("expected not found")
	}
	if IsNotFound(errors.New("missing")) {
		t.Fatalf("plain errors are never remote 404s")
	}
	if HTTPStatus(errors.New("boom")) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown errors")
	}
}
