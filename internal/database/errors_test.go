package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert user: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}

	if !IsUniqueViolation(unique) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(fk) {
		t.Error("expected 23503 not to be a unique violation")
	}
	if !IsForeignKeyViolation(fk) {
		t.Error("expected 23503 to be a foreign key violation")
	}
	if IsForeignKeyViolation(errors.New("boom")) {
		t.Error("expected plain error not to match")
	}

	check := fmt.Errorf("add cart line: %w", &pq.Error{Code: "23514"})
	overflow := &pq.Error{Code: "22003"}
	if !IsCheckViolation(check) {
		t.Error("expected wrapped 23514 to be a check violation")
	}
	if !IsOutOfRange(overflow) {
		t.Error("expected 22003 to be out of range")
	}
	if IsOutOfRange(check) {
		t.Error("expected 23514 not to be out of range")
	}
}
