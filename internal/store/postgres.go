package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as two concurrent uploads racing for the same version number.
var ErrDuplicate = errors.New("duplicate row")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ---- identities ----

func (s *PostgresStore) CreateIdentity(ctx context.Context, identity Identity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (id, display_name, email, password_hash, is_email_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, identity.ID, identity.DisplayName, identity.Email, identity.PasswordHash, identity.IsEmailVerified, identity.VerificationToken)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create identity: %w", ErrDuplicate)
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	var identity Identity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, is_email_verified, created_at, updated_at
		FROM identities
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(
		&identity.ID,
		&identity.DisplayName,
		&identity.Email,
		&identity.PasswordHash,
		&identity.IsEmailVerified,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (s *PostgresStore) GetIdentityByID(ctx context.Context, identityID string) (Identity, error) {
	var identity Identity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, is_email_verified, created_at, updated_at
		FROM identities
		WHERE id = $1
	`, identityID).Scan(
		&identity.ID,
		&identity.DisplayName,
		&identity.Email,
		&identity.PasswordHash,
		&identity.IsEmailVerified,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (s *PostgresStore) UpdateVerificationToken(ctx context.Context, identityID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE identities
		SET verification_token=$2, verification_expires_at=$3, updated_at=NOW()
		WHERE id=$1
	`, identityID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}
	return nil
}

func (s *PostgresStore) VerifyIdentityEmail(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE identities
		SET is_email_verified=TRUE, verification_token='', verification_expires_at=NULL, updated_at=NOW()
		WHERE verification_token=$1 AND verification_expires_at > NOW()
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify email rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) UpdateIdentityPassword(ctx context.Context, identityID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE identities SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, identityID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, identityID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, identity_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, identityID, expiresAt)
	if err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var identityID string
	err := s.db.QueryRowContext(ctx, `
		SELECT identity_id FROM password_resets
		WHERE token=$1 AND used_at IS NULL AND expires_at > NOW()
	`, token).Scan(&identityID)
	if err != nil {
		return "", err
	}
	return identityID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE password_resets SET used_at=NOW() WHERE token=$1`, token)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	return nil
}

// ---- refresh sessions (fallback when Redis is not configured) ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, identityID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, identity_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET identity_id=EXCLUDED.identity_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, identityID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (Identity, error) {
	const query = `
		SELECT i.id, i.display_name, i.email
		FROM refresh_sessions rs
		JOIN identities i ON i.id = rs.identity_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var identity Identity
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&identity.ID, &identity.DisplayName, &identity.Email)
	if err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// ---- documents ----

func (s *PostgresStore) InsertDocument(ctx context.Context, item Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, description, created_by, is_public)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.Title, item.Description, item.CreatedBy, item.IsPublic)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (Document, error) {
	var item Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_by, is_public, created_at, updated_at
		FROM documents
		WHERE id=$1
	`, documentID).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.CreatedBy,
		&item.IsPublic,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	return item, nil
}

// ListDocumentsFor returns every document the identity can read: its
// own, public ones, and ones shared with it. Most recently updated
// first.
func (s *PostgresStore) ListDocumentsFor(ctx context.Context, identityID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.description, d.created_by, d.is_public, d.created_at, d.updated_at
		FROM documents d
		WHERE d.created_by = $1
			OR d.is_public
			OR EXISTS (SELECT 1 FROM shares sh WHERE sh.document_id = d.id AND sh.shared_with = $1)
		ORDER BY d.updated_at DESC
	`, identityID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]Document, 0)
	for rows.Next() {
		var item Document
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.CreatedBy, &item.IsPublic, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, documentID, title, description string, isPublic bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET title=$2, description=$3, is_public=$4, updated_at=NOW()
		WHERE id=$1
	`, documentID, title, description, isPublic)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (s *PostgresStore) TouchDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE documents SET updated_at=NOW() WHERE id=$1`, documentID)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}

// DeleteDocument removes the row; versions, comments, approvals, shares
// and activity follow through ON DELETE CASCADE.
func (s *PostgresStore) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id=$1`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ---- versions ----

func (s *PostgresStore) MaxVersionNumber(ctx context.Context, documentID string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version_number), 0) FROM versions WHERE document_id=$1
	`, documentID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}
	return max, nil
}

func (s *PostgresStore) InsertVersion(ctx context.Context, item Version) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO versions (id, document_id, version_number, storage_key, file_name, size_bytes, mime_type, uploaded_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ID, item.DocumentID, item.VersionNumber, item.StorageKey, item.FileName, item.SizeBytes, item.MimeType, item.UploadedBy, item.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert version: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListVersions(ctx context.Context, documentID string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, version_number, storage_key, file_name, size_bytes, mime_type, uploaded_by, notes, created_at
		FROM versions
		WHERE document_id=$1
		ORDER BY version_number DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	items := make([]Version, 0)
	for rows.Next() {
		var item Version
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.VersionNumber, &item.StorageKey, &item.FileName, &item.SizeBytes, &item.MimeType, &item.UploadedBy, &item.Notes, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetVersionByNumber(ctx context.Context, documentID string, number int) (Version, error) {
	var item Version
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, version_number, storage_key, file_name, size_bytes, mime_type, uploaded_by, notes, created_at
		FROM versions
		WHERE document_id=$1 AND version_number=$2
	`, documentID, number).Scan(&item.ID, &item.DocumentID, &item.VersionNumber, &item.StorageKey, &item.FileName, &item.SizeBytes, &item.MimeType, &item.UploadedBy, &item.Notes, &item.CreatedAt)
	if err != nil {
		return Version{}, err
	}
	return item, nil
}

func (s *PostgresStore) GetVersionByID(ctx context.Context, versionID string) (Version, error) {
	var item Version
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, version_number, storage_key, file_name, size_bytes, mime_type, uploaded_by, notes, created_at
		FROM versions
		WHERE id=$1
	`, versionID).Scan(&item.ID, &item.DocumentID, &item.VersionNumber, &item.StorageKey, &item.FileName, &item.SizeBytes, &item.MimeType, &item.UploadedBy, &item.Notes, &item.CreatedAt)
	if err != nil {
		return Version{}, err
	}
	return item, nil
}

// ListStoredObjects returns every storage key the ledger references,
// used by the sweep to tell orphans apart from live artifacts.
func (s *PostgresStore) ListStoredObjects(ctx context.Context) ([]StoredObjectRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id, storage_key FROM versions`)
	if err != nil {
		return nil, fmt.Errorf("list stored objects: %w", err)
	}
	defer rows.Close()

	refs := make([]StoredObjectRef, 0)
	for rows.Next() {
		var ref StoredObjectRef
		if err := rows.Scan(&ref.DocumentID, &ref.StorageKey); err != nil {
			return nil, fmt.Errorf("scan stored object: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stored objects: %w", err)
	}
	return refs, nil
}

// ---- comments ----

func (s *PostgresStore) InsertComment(ctx context.Context, item Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, document_id, version_id, parent_id, content, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.DocumentID, item.VersionID, item.ParentID, item.Content, item.AuthorID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetComment(ctx context.Context, commentID string) (Comment, error) {
	var item Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.document_id, c.version_id, c.parent_id, c.content, c.author_id, i.display_name, c.created_at, c.updated_at
		FROM comments c
		JOIN identities i ON i.id = c.author_id
		WHERE c.id=$1
	`, commentID).Scan(&item.ID, &item.DocumentID, &item.VersionID, &item.ParentID, &item.Content, &item.AuthorID, &item.AuthorName, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	return item, nil
}

func (s *PostgresStore) UpdateCommentContent(ctx context.Context, commentID, content string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content=$2, updated_at=NOW() WHERE id=$1
	`, commentID, content)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// DeleteComment removes the comment; descendants follow through the
// parent_id ON DELETE CASCADE.
func (s *PostgresStore) DeleteComment(ctx context.Context, commentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, documentID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.version_id, c.parent_id, c.content, c.author_id, i.display_name, c.created_at, c.updated_at
		FROM comments c
		JOIN identities i ON i.id = c.author_id
		WHERE c.document_id=$1
		ORDER BY c.created_at ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]Comment, 0)
	for rows.Next() {
		var item Comment
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.VersionID, &item.ParentID, &item.Content, &item.AuthorID, &item.AuthorName, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

// ---- approvals ----

func (s *PostgresStore) InsertApproval(ctx context.Context, item Approval) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO approvals (id, document_id, version_id, requested_by, assigned_to, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.DocumentID, item.VersionID, item.RequestedBy, item.AssignedTo, item.Status, item.Notes)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetApproval(ctx context.Context, approvalID string) (Approval, error) {
	var item Approval
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, version_id, requested_by, assigned_to, status, notes, created_at, updated_at
		FROM approvals
		WHERE id=$1
	`, approvalID).Scan(&item.ID, &item.DocumentID, &item.VersionID, &item.RequestedBy, &item.AssignedTo, &item.Status, &item.Notes, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Approval{}, err
	}
	return item, nil
}

// ResolveApproval moves a pending approval to a terminal status. The
// WHERE clause guards the transition: resolving an already-resolved
// approval matches zero rows and reports false.
func (s *PostgresStore) ResolveApproval(ctx context.Context, approvalID, status, notes string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE approvals
		SET status=$2, notes=$3, updated_at=NOW()
		WHERE id=$1 AND status='pending'
	`, approvalID, status, notes)
	if err != nil {
		return false, fmt.Errorf("resolve approval: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve approval rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) ListApprovals(ctx context.Context, documentID string) ([]Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, version_id, requested_by, assigned_to, status, notes, created_at, updated_at
		FROM approvals
		WHERE document_id=$1
		ORDER BY created_at DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	items := make([]Approval, 0)
	for rows.Next() {
		var item Approval
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.VersionID, &item.RequestedBy, &item.AssignedTo, &item.Status, &item.Notes, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}
	return items, nil
}

// ---- shares ----

// UpsertShare records or replaces the grant for (document, shared_with).
// Re-sharing overwrites the permission rather than adding a second row.
func (s *PostgresStore) UpsertShare(ctx context.Context, item Share) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shares (id, document_id, shared_with, shared_by, permission)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, shared_with) DO UPDATE SET permission=EXCLUDED.permission, shared_by=EXCLUDED.shared_by
	`, item.ID, item.DocumentID, item.SharedWith, item.SharedBy, item.Permission)
	if err != nil {
		return fmt.Errorf("upsert share: %w", err)
	}
	return nil
}

// GetShareLevel returns the permission granted to the identity on the
// document, or "" when no share exists.
func (s *PostgresStore) GetShareLevel(ctx context.Context, documentID, identityID string) (string, error) {
	var permission string
	err := s.db.QueryRowContext(ctx, `
		SELECT permission FROM shares WHERE document_id=$1 AND shared_with=$2
	`, documentID, identityID).Scan(&permission)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get share level: %w", err)
	}
	return permission, nil
}

func (s *PostgresStore) ListShares(ctx context.Context, documentID string) ([]Share, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, shared_with, shared_by, permission, created_at
		FROM shares
		WHERE document_id=$1
		ORDER BY created_at ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	items := make([]Share, 0)
	for rows.Next() {
		var item Share
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.SharedWith, &item.SharedBy, &item.Permission, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteShare(ctx context.Context, documentID, identityID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shares WHERE document_id=$1 AND shared_with=$2`, documentID, identityID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	return nil
}

// ---- activity log ----

func (s *PostgresStore) InsertActivity(ctx context.Context, entry ActivityEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity_log (document_id, actor_id, actor_name, action, details)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.DocumentID, entry.ActorID, entry.ActorName, entry.Action, details)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActivity(ctx context.Context, documentID string, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, actor_id, actor_name, action, details, created_at
		FROM activity_log
		WHERE document_id=$1
		ORDER BY id DESC
		LIMIT $2
	`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	items := make([]ActivityEntry, 0)
	for rows.Next() {
		var item ActivityEntry
		var details []byte
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.ActorID, &item.ActorName, &item.Action, &details, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &item.Details); err != nil {
				return nil, fmt.Errorf("unmarshal activity details: %w", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return items, nil
}
