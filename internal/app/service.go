package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/imankii01/docuflow/internal/access"
	"github.com/imankii01/docuflow/internal/auth"
	"github.com/imankii01/docuflow/internal/authpw"
	"github.com/imankii01/docuflow/internal/config"
	"github.com/imankii01/docuflow/internal/search"
	"github.com/imankii01/docuflow/internal/storage"
	"github.com/imankii01/docuflow/internal/store"
	"github.com/imankii01/docuflow/internal/util"
)

// Identity is the acting principal. Every service operation takes one
// explicitly; nothing reads identity from ambient state.
type Identity struct {
	ID   string
	Name string
}

type Session struct {
	Token        string
	RefreshToken string
	Identity     Identity
	JTI          string
	ExpiresAt    time.Time
}

const (
	ActionDocumentCreated   = "document_created"
	ActionVersionUploaded   = "version_uploaded"
	ActionCommentAdded      = "comment_added"
	ActionDocumentShared    = "document_shared"
	ActionApprovalRequested = "approval_requested"
	ActionApprovalUpdated   = "approval_updated"
)

type dataStore interface {
	GetIdentityByID(context.Context, string) (store.Identity, error)

	InsertDocument(context.Context, store.Document) error
	GetDocument(context.Context, string) (store.Document, error)
	ListDocumentsFor(context.Context, string) ([]store.Document, error)
	UpdateDocument(context.Context, string, string, string, bool) error
	TouchDocument(context.Context, string) error
	DeleteDocument(context.Context, string) error

	MaxVersionNumber(context.Context, string) (int, error)
	InsertVersion(context.Context, store.Version) error
	ListVersions(context.Context, string) ([]store.Version, error)
	GetVersionByNumber(context.Context, string, int) (store.Version, error)
	GetVersionByID(context.Context, string) (store.Version, error)

	InsertComment(context.Context, store.Comment) error
	GetComment(context.Context, string) (store.Comment, error)
	UpdateCommentContent(context.Context, string, string) error
	DeleteComment(context.Context, string) error
	ListComments(context.Context, string) ([]store.Comment, error)

	InsertApproval(context.Context, store.Approval) error
	GetApproval(context.Context, string) (store.Approval, error)
	ResolveApproval(context.Context, string, string, string) (bool, error)
	ListApprovals(context.Context, string) ([]store.Approval, error)

	UpsertShare(context.Context, store.Share) error
	GetShareLevel(context.Context, string, string) (string, error)
	ListShares(context.Context, string) ([]store.Share, error)
	DeleteShare(context.Context, string, string) error

	InsertActivity(context.Context, store.ActivityEntry) error
	ListActivity(context.Context, string, int) ([]store.ActivityEntry, error)

	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	Ping(ctx context.Context) error
}

type objectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	RemovePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

// refreshStore holds refresh sessions. Redis when configured, the
// Postgres store otherwise.
type refreshStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, identityID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.Identity, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type Service struct {
	cfg      config.Config
	store    dataStore
	objects  objectStore
	sessions refreshStore
	search   *search.Service
	resolver *access.Resolver
	authpw   *authpw.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, objects *storage.ObjectStore, sessions refreshStore, searchSvc *search.Service) *Service {
	if sessions == nil {
		sessions = dataStore
	}
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		objects:  objects,
		sessions: sessions,
		search:   searchSvc,
		resolver: access.NewResolver(dataStore),
		authpw:   authpw.NewService(dataStore),
	}
}

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

// requireAccess loads the document and checks the identity's level
// against it. An inaccessible document is reported as not found rather
// than forbidden, so its existence is not leaked; forbidden means the
// caller may see the document but lacks the level this operation needs.
func (s *Service) requireAccess(ctx context.Context, identity Identity, documentID string, need access.Level) (store.Document, access.Level, error) {
	if identity.ID == "" {
		return store.Document{}, access.None, errUnauthenticated()
	}
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Document{}, access.None, errNotFound()
		}
		return store.Document{}, access.None, err
	}
	level, err := s.resolver.Resolve(ctx, identity.ID, doc)
	if err != nil {
		return store.Document{}, access.None, err
	}
	if level == access.None {
		return store.Document{}, access.None, errNotFound()
	}
	if level < need {
		return store.Document{}, access.None, errForbidden()
	}
	return doc, level, nil
}

// appendActivity records an audit entry. A failed append is logged but
// does not fail the operation it describes.
func (s *Service) appendActivity(ctx context.Context, identity Identity, documentID, action string, details map[string]any) {
	entry := store.ActivityEntry{
		DocumentID: documentID,
		ActorID:    identity.ID,
		ActorName:  identity.Name,
		Action:     action,
		Details:    details,
	}
	if err := s.store.InsertActivity(ctx, entry); err != nil {
		log.Warn().Err(err).Str("document", documentID).Str("action", action).Msg("activity append failed")
	}
}

// ── Documents ──

func (s *Service) CreateDocument(ctx context.Context, identity Identity, title, description string, isPublic bool) (store.Document, error) {
	if identity.ID == "" {
		return store.Document{}, errUnauthenticated()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return store.Document{}, errValidation("title is required", nil)
	}

	doc := store.Document{
		ID:          util.NewID("doc"),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedBy:   identity.ID,
		IsPublic:    isPublic,
	}
	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return store.Document{}, err
	}

	s.appendActivity(ctx, identity, doc.ID, ActionDocumentCreated, map[string]any{"title": doc.Title})
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{ID: doc.ID, Title: doc.Title, Description: doc.Description})
	}

	created, err := s.store.GetDocument(ctx, doc.ID)
	if err != nil {
		return doc, nil
	}
	return created, nil
}

func (s *Service) GetDocument(ctx context.Context, identity Identity, documentID string) (store.Document, error) {
	doc, _, err := s.requireAccess(ctx, identity, documentID, access.View)
	return doc, err
}

func (s *Service) ListDocuments(ctx context.Context, identity Identity) ([]store.Document, error) {
	if identity.ID == "" {
		return nil, errUnauthenticated()
	}
	return s.store.ListDocumentsFor(ctx, identity.ID)
}

// UpdateDocument patches title, description, or visibility. Only the
// creator may mutate a document; shared edit access covers content, not
// the catalog entry itself.
func (s *Service) UpdateDocument(ctx context.Context, identity Identity, documentID string, title, description *string, isPublic *bool) (store.Document, error) {
	doc, _, err := s.requireAccess(ctx, identity, documentID, access.View)
	if err != nil {
		return store.Document{}, err
	}
	if doc.CreatedBy != identity.ID {
		return store.Document{}, errForbidden()
	}

	newTitle := doc.Title
	if title != nil {
		newTitle = strings.TrimSpace(*title)
		if newTitle == "" {
			return store.Document{}, errValidation("title is required", nil)
		}
	}
	newDescription := doc.Description
	if description != nil {
		newDescription = strings.TrimSpace(*description)
	}
	newPublic := doc.IsPublic
	if isPublic != nil {
		newPublic = *isPublic
	}

	if err := s.store.UpdateDocument(ctx, documentID, newTitle, newDescription, newPublic); err != nil {
		return store.Document{}, err
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{ID: documentID, Title: newTitle, Description: newDescription})
	}
	return s.store.GetDocument(ctx, documentID)
}

// DeleteDocument removes the document row; versions, comments,
// approvals, shares, and activity cascade in the database. Stored
// version content is removed best-effort and the sweep reclaims
// anything left behind.
func (s *Service) DeleteDocument(ctx context.Context, identity Identity, documentID string) error {
	doc, _, err := s.requireAccess(ctx, identity, documentID, access.View)
	if err != nil {
		return err
	}
	if doc.CreatedBy != identity.ID {
		return errForbidden()
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if s.objects != nil {
		if err := s.objects.RemovePrefix(ctx, storage.DocumentPrefix(documentID)); err != nil {
			log.Warn().Err(err).Str("document", documentID).Msg("version content cleanup failed, sweep will reclaim")
		}
	}
	if s.search != nil {
		s.search.DeleteDocument(documentID)
	}
	return nil
}

// ── Versions ──

// UploadVersion stores the content first and writes the ledger row
// second. The two steps are not atomic: a crash in between leaves an
// orphan object, which the reconciliation sweep later removes. If two
// uploads race for the same number the loser gets a conflict and may
// retry; an already-written object from the losing attempt is likewise
// left for the sweep.
func (s *Service) UploadVersion(ctx context.Context, identity Identity, documentID string, content io.Reader, size int64, fileName, mimeType, notes string) (store.Version, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.Edit); err != nil {
		return store.Version{}, err
	}

	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return store.Version{}, errValidation("file name is required", nil)
	}
	if size < 0 {
		return store.Version{}, errValidation("content size is required", nil)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	maxNumber, err := s.store.MaxVersionNumber(ctx, documentID)
	if err != nil {
		return store.Version{}, err
	}

	key := storage.ObjectKey(documentID)
	if err := s.objects.Put(ctx, key, content, size, mimeType); err != nil {
		return store.Version{}, err
	}

	version := store.Version{
		ID:            util.NewID("ver"),
		DocumentID:    documentID,
		VersionNumber: maxNumber + 1,
		StorageKey:    key,
		FileName:      fileName,
		SizeBytes:     size,
		MimeType:      mimeType,
		UploadedBy:    identity.ID,
		Notes:         strings.TrimSpace(notes),
	}
	if err := s.store.InsertVersion(ctx, version); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return store.Version{}, errConflict("version number was taken by a concurrent upload, retry")
		}
		return store.Version{}, errStorageInconsistent("version content stored but ledger write failed")
	}

	if err := s.store.TouchDocument(ctx, documentID); err != nil {
		log.Warn().Err(err).Str("document", documentID).Msg("touch after upload failed")
	}
	s.appendActivity(ctx, identity, documentID, ActionVersionUploaded, map[string]any{
		"version_number": version.VersionNumber,
		"file_name":      version.FileName,
	})
	return version, nil
}

func (s *Service) ListVersions(ctx context.Context, identity Identity, documentID string) ([]store.Version, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.View); err != nil {
		return nil, err
	}
	return s.store.ListVersions(ctx, documentID)
}

func (s *Service) GetVersion(ctx context.Context, identity Identity, documentID string, number int) (store.Version, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.View); err != nil {
		return store.Version{}, err
	}
	version, err := s.store.GetVersionByNumber(ctx, documentID, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Version{}, errNotFound()
		}
		return store.Version{}, err
	}
	return version, nil
}

// FetchVersion returns the ledger row together with its stored content.
// The caller must close the reader.
func (s *Service) FetchVersion(ctx context.Context, identity Identity, documentID string, number int) (store.Version, io.ReadCloser, error) {
	version, err := s.GetVersion(ctx, identity, documentID, number)
	if err != nil {
		return store.Version{}, nil, err
	}
	content, err := s.objects.Get(ctx, version.StorageKey)
	if err != nil {
		return store.Version{}, nil, errStorageInconsistent("ledger row exists but stored content is missing")
	}
	return version, content, nil
}

// ── Comments ──

func (s *Service) AddComment(ctx context.Context, identity Identity, documentID, content string, versionID, parentID *string) (store.Comment, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.Comment); err != nil {
		return store.Comment{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return store.Comment{}, errValidation("content is required", nil)
	}

	if versionID != nil && *versionID != "" {
		version, err := s.store.GetVersionByID(ctx, *versionID)
		if err != nil || version.DocumentID != documentID {
			return store.Comment{}, errValidation("version does not belong to this document", nil)
		}
	} else {
		versionID = nil
	}

	if parentID != nil && *parentID != "" {
		parent, err := s.store.GetComment(ctx, *parentID)
		if err != nil || parent.DocumentID != documentID {
			return store.Comment{}, errValidation("parent comment does not belong to this document", nil)
		}
	} else {
		parentID = nil
	}

	comment := store.Comment{
		ID:         util.NewID("cmt"),
		DocumentID: documentID,
		VersionID:  versionID,
		ParentID:   parentID,
		Content:    content,
		AuthorID:   identity.ID,
		AuthorName: identity.Name,
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return store.Comment{}, err
	}

	s.appendActivity(ctx, identity, documentID, ActionCommentAdded, map[string]any{"preview": truncate(content, 80)})
	return s.store.GetComment(ctx, comment.ID)
}

func (s *Service) UpdateComment(ctx context.Context, identity Identity, documentID, commentID, content string) (store.Comment, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.Comment); err != nil {
		return store.Comment{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return store.Comment{}, errValidation("content is required", nil)
	}

	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil || comment.DocumentID != documentID {
		return store.Comment{}, errNotFound()
	}
	if comment.AuthorID != identity.ID {
		return store.Comment{}, errForbidden()
	}
	if err := s.store.UpdateCommentContent(ctx, commentID, content); err != nil {
		return store.Comment{}, err
	}
	return s.store.GetComment(ctx, commentID)
}

// DeleteComment removes a comment and, through the schema, its replies.
func (s *Service) DeleteComment(ctx context.Context, identity Identity, documentID, commentID string) error {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.Comment); err != nil {
		return err
	}
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil || comment.DocumentID != documentID {
		return errNotFound()
	}
	if comment.AuthorID != identity.ID {
		return errForbidden()
	}
	return s.store.DeleteComment(ctx, commentID)
}

func (s *Service) ListComments(ctx context.Context, identity Identity, documentID string) ([]store.Comment, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.View); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, documentID)
}

// ── Approvals ──

func (s *Service) RequestApproval(ctx context.Context, identity Identity, documentID, assignedTo string, versionID *string, notes string) (store.Approval, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.Edit); err != nil {
		return store.Approval{}, err
	}
	assignedTo = strings.TrimSpace(assignedTo)
	if assignedTo == "" {
		return store.Approval{}, errValidation("assignee is required", nil)
	}
	if _, err := s.store.GetIdentityByID(ctx, assignedTo); err != nil {
		return store.Approval{}, errValidation("assignee does not exist", nil)
	}

	if versionID != nil && *versionID != "" {
		version, err := s.store.GetVersionByID(ctx, *versionID)
		if err != nil || version.DocumentID != documentID {
			return store.Approval{}, errValidation("version does not belong to this document", nil)
		}
	} else {
		versionID = nil
	}

	approval := store.Approval{
		ID:          util.NewID("apr"),
		DocumentID:  documentID,
		VersionID:   versionID,
		RequestedBy: identity.ID,
		AssignedTo:  assignedTo,
		Status:      store.ApprovalPending,
		Notes:       strings.TrimSpace(notes),
	}
	if err := s.store.InsertApproval(ctx, approval); err != nil {
		return store.Approval{}, err
	}

	s.appendActivity(ctx, identity, documentID, ActionApprovalRequested, map[string]any{"assigned_to": assignedTo})
	return s.store.GetApproval(ctx, approval.ID)
}

// ResolveApproval moves a pending approval to approved or rejected.
// Only the assignee may resolve, and only once: the store's guarded
// update reports whether the row was still pending.
func (s *Service) ResolveApproval(ctx context.Context, identity Identity, approvalID, status, notes string) (store.Approval, error) {
	if identity.ID == "" {
		return store.Approval{}, errUnauthenticated()
	}
	if status != store.ApprovalApproved && status != store.ApprovalRejected {
		return store.Approval{}, errValidation("status must be approved or rejected", nil)
	}

	approval, err := s.store.GetApproval(ctx, approvalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Approval{}, errNotFound()
		}
		return store.Approval{}, err
	}
	if _, _, err := s.requireAccess(ctx, identity, approval.DocumentID, access.View); err != nil {
		return store.Approval{}, err
	}
	if approval.AssignedTo != identity.ID {
		return store.Approval{}, errForbidden()
	}

	resolved, err := s.store.ResolveApproval(ctx, approvalID, status, strings.TrimSpace(notes))
	if err != nil {
		return store.Approval{}, err
	}
	if !resolved {
		return store.Approval{}, errInvalidState("approval is already resolved")
	}

	s.appendActivity(ctx, identity, approval.DocumentID, ActionApprovalUpdated, map[string]any{"status": status})
	return s.store.GetApproval(ctx, approvalID)
}

func (s *Service) ListApprovals(ctx context.Context, identity Identity, documentID string) ([]store.Approval, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.View); err != nil {
		return nil, err
	}
	return s.store.ListApprovals(ctx, documentID)
}

// ── Shares ──

// ShareDocument grants or replaces one identity's level on a document.
// Sharing is a creator privilege; a second share for the same pair
// overwrites the first.
func (s *Service) ShareDocument(ctx context.Context, identity Identity, documentID, sharedWith, permission string) (store.Share, error) {
	doc, _, err := s.requireAccess(ctx, identity, documentID, access.View)
	if err != nil {
		return store.Share{}, err
	}
	if doc.CreatedBy != identity.ID {
		return store.Share{}, errForbidden()
	}

	sharedWith = strings.TrimSpace(sharedWith)
	if sharedWith == "" {
		return store.Share{}, errValidation("sharedWith is required", nil)
	}
	if sharedWith == identity.ID {
		return store.Share{}, errValidation("cannot share a document with its creator", nil)
	}
	if _, ok := access.ParseLevel(permission); !ok {
		return store.Share{}, errValidation("permission must be view, comment, or edit", nil)
	}
	if _, err := s.store.GetIdentityByID(ctx, sharedWith); err != nil {
		return store.Share{}, errValidation("target identity does not exist", nil)
	}

	share := store.Share{
		ID:         util.NewID("shr"),
		DocumentID: documentID,
		SharedWith: sharedWith,
		SharedBy:   identity.ID,
		Permission: permission,
	}
	if err := s.store.UpsertShare(ctx, share); err != nil {
		return store.Share{}, err
	}

	s.appendActivity(ctx, identity, documentID, ActionDocumentShared, map[string]any{
		"shared_with": sharedWith,
		"permission":  permission,
	})

	shares, err := s.store.ListShares(ctx, documentID)
	if err != nil {
		return share, nil
	}
	for _, existing := range shares {
		if existing.SharedWith == sharedWith {
			return existing, nil
		}
	}
	return share, nil
}

// RemoveShare revokes a grant. Removing a share that does not exist is
// a no-op.
func (s *Service) RemoveShare(ctx context.Context, identity Identity, documentID, identityID string) error {
	doc, _, err := s.requireAccess(ctx, identity, documentID, access.View)
	if err != nil {
		return err
	}
	if doc.CreatedBy != identity.ID {
		return errForbidden()
	}
	return s.store.DeleteShare(ctx, documentID, identityID)
}

func (s *Service) ListShares(ctx context.Context, identity Identity, documentID string) ([]store.Share, error) {
	doc, _, err := s.requireAccess(ctx, identity, documentID, access.View)
	if err != nil {
		return nil, err
	}
	if doc.CreatedBy != identity.ID {
		return nil, errForbidden()
	}
	return s.store.ListShares(ctx, documentID)
}

// ── Activity ──

func (s *Service) ListActivity(ctx context.Context, identity Identity, documentID string, limit int) ([]store.ActivityEntry, error) {
	if _, _, err := s.requireAccess(ctx, identity, documentID, access.View); err != nil {
		return nil, err
	}
	return s.store.ListActivity(ctx, documentID, limit)
}

// ── Search ──

// Search runs the full-text query and keeps only hits the identity may
// view. The filter runs per hit against the live resolver, so a revoked
// share disappears from results immediately.
func (s *Service) Search(ctx context.Context, identity Identity, query string, limit, offset int) (search.Response, error) {
	if identity.ID == "" {
		return search.Response{}, errUnauthenticated()
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: query}, nil
	}

	raw := s.search.Search(search.Query{Text: query, Limit: limit, Offset: offset})
	filtered := make([]search.Result, 0, len(raw.Results))
	for _, hit := range raw.Results {
		doc, err := s.store.GetDocument(ctx, hit.DocumentID)
		if err != nil {
			continue
		}
		level, err := s.resolver.Resolve(ctx, identity.ID, doc)
		if err != nil || level == access.None {
			continue
		}
		filtered = append(filtered, hit)
	}
	return search.Response{Results: filtered, Total: len(filtered), Query: raw.Query}, nil
}

// ── Sessions ──

func (s *Service) CreateSession(ctx context.Context, identityID string) (Session, error) {
	identity, err := s.store.GetIdentityByID(ctx, identityID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, identity)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	ref, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	// The Redis backend stores only the identity ID.
	identity, err := s.store.GetIdentityByID(ctx, ref.ID)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, identity)
}

func (s *Service) issueSession(ctx context.Context, identity store.Identity) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), identity.ID, identity.DisplayName, jti, expiresAt)
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), identity.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		Identity:     Identity{ID: identity.ID, Name: identity.DisplayName},
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	identity, err := s.store.GetIdentityByID(ctx, claims.Subject)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		Identity:  Identity{ID: identity.ID, Name: identity.DisplayName},
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// ── Health ──

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) StoragePing(ctx context.Context) error {
	if s.objects == nil {
		return nil
	}
	return s.objects.Ping(ctx)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "…"
}
