package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestWrapErrorKeepsKind(t *testing.T) {
	err := WrapError(ErrFolderLocked, "upload document", errors.New("folder f1 is submitted"))
	if !IsKind(err, ErrFolderLocked) {
		t.Fatalf("expected ErrFolderLocked kind, got %v", err)
	}
	if IsKind(err, ErrNotFound) {
		t.Fatalf("unexpected ErrNotFound kind in %v", err)
	}
	if !strings.Contains(err.Error(), "upload document") {
		t.Fatalf("expected operation context in %v", err)
	}
}

func TestWrapErrorNil(t *testing.T) {
	if err := WrapError(ErrNotFound, "get folder", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestIncompleteChecklistError(t *testing.T) {
	var err error = &IncompleteChecklistError{
		Missing: []DocumentType{TypePayroll, TypeSocialSecurityPayment},
	}
	if !IsKind(err, ErrIncompleteChecklist) {
		t.Fatalf("expected ErrIncompleteChecklist kind, got %v", err)
	}

	wrapped := fmt.Errorf("submit folder: %w", err)
	got := MissingTypes(wrapped)
	want := []DocumentType{TypePayroll, TypeSocialSecurityPayment}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MissingTypes() = %v, want %v", got, want)
	}

	if MissingTypes(errors.New("plain")) != nil {
		t.Fatalf("expected nil missing list for unrelated error")
	}
}
