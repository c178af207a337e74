package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// The schema, not application code, enforces the ledger and share
// invariants. These tests pin the constraints the service relies on.
func readSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join("..", "..", "db", "migrations", "0001_init.up.sql")
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	return string(contents)
}

func TestSchemaEnforcesVersionNumberUniqueness(t *testing.T) {
	schema := readSchema(t)
	if !strings.Contains(schema, "UNIQUE (document_id, version_number)") {
		t.Fatal("versions table must carry a unique constraint on (document_id, version_number)")
	}
}

func TestSchemaEnforcesSingleSharePerIdentity(t *testing.T) {
	schema := readSchema(t)
	if !strings.Contains(schema, "UNIQUE (document_id, shared_with)") {
		t.Fatal("shares table must carry a unique constraint on (document_id, shared_with)")
	}
}

func TestSchemaCascadesCommentThreads(t *testing.T) {
	schema := readSchema(t)
	if !strings.Contains(schema, "parent_id TEXT REFERENCES comments(id) ON DELETE CASCADE") {
		t.Fatal("comment threads must cascade through parent_id in the store")
	}
}

func TestSchemaRestrictsApprovalStatuses(t *testing.T) {
	schema := readSchema(t)
	if !strings.Contains(schema, "status IN ('pending', 'approved', 'rejected')") {
		t.Fatal("approvals table must restrict status values")
	}
}
