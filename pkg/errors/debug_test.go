package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "basket_items_user_product_key",
		TableName:      "basket_items",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("upsert basket item: %w", pgErr), "item already exists")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("code = %s, want %s", dump.Code, CodeConflict)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "basket_items_user_product_key" {
		t.Fatalf("postgres fields not extracted: %+v", dump)
	}
	if !dump.UniqueViolation {
		t.Fatal("duplicate key must be flagged as a unique violation")
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("chain too short: %v", dump.Chain)
	}
}

func TestDumpPlainError(t *testing.T) {
	dump := Dump(fmt.Errorf("rotation table locked"))
	if dump.TopMessage != "rotation table locked" {
		t.Fatalf("top message = %q", dump.TopMessage)
	}
	if dump.PGCode != "" || dump.UniqueViolation {
		t.Fatalf("unexpected postgres fields: %+v", dump)
	}
}

func TestDumpNil(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || len(dump.Chain) != 0 {
		t.Fatalf("nil error produced %+v", dump)
	}
}
