package core

import (
	"errors"
	"testing"
)

func TestConfigurationErrorFamily(t *testing.T) {
	family := []error{
		ErrColumnNotFound,
		ErrColumnKind,
		ErrInvalidRange,
		ErrInvalidBins,
		ErrEmptyChain,
		ErrDuplicateKey,
		NewColumnNotFoundError("Age"),
		NewColumnKindError("Gender", "numeric", "categorical"),
		NewConfigurationError("labels", "length mismatch"),
	}
	for _, err := range family {
		if !IsConfigurationError(err) {
			t.Errorf("expected %v to be a configuration error", err)
		}
	}

	if IsConfigurationError(ErrViewNotFound) {
		t.Error("view lookup failures are not configuration errors")
	}
}

func TestColumnNotFoundIsNotFound(t *testing.T) {
	err := NewColumnNotFoundError("Colour")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if !IsNotFoundError(err) {
		t.Error("missing columns should report as not found")
	}
}
