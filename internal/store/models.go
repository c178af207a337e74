package store

import "time"

// Identity is an authenticated actor. Every operation in the service
// acts on behalf of exactly one identity.
type Identity struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Document is a catalog entry. Only the creator may mutate or delete it.
type Document struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Version is one row of a document's append-only ledger. Rows are never
// updated or renumbered after insert.
type Version struct {
	ID            string
	DocumentID    string
	VersionNumber int
	StorageKey    string
	FileName      string
	SizeBytes     int64
	MimeType      string
	UploadedBy    string
	Notes         string
	CreatedAt     time.Time
}

type Comment struct {
	ID         string
	DocumentID string
	VersionID  *string
	ParentID   *string
	Content    string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Approval statuses. pending is the only non-terminal state.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type Approval struct {
	ID          string
	DocumentID  string
	VersionID   *string
	RequestedBy string
	AssignedTo  string
	Status      string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Share grants one identity a permission level on one document. At most
// one row exists per (document, shared_with) pair.
type Share struct {
	ID         string
	DocumentID string
	SharedWith string
	SharedBy   string
	Permission string
	CreatedAt  time.Time
}

// ActivityEntry is an immutable audit record. The application only ever
// inserts and reads these rows.
type ActivityEntry struct {
	ID         int64
	DocumentID string
	ActorID    string
	ActorName  string
	Action     string
	Details    map[string]any
	CreatedAt  time.Time
}

// StoredObjectRef pairs a version row with its storage key, for the
// orphan reconciliation sweep.
type StoredObjectRef struct {
	DocumentID string
	StorageKey string
}
