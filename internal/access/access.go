// Package access decides what an identity may do with a document. Every
// operation asks the resolver before touching rows; nothing else in the
// service makes authorization decisions.
package access

import (
	"context"
	"fmt"

	"github.com/imankii01/docuflow/internal/store"
)

// Level is an ordinal permission: each level includes everything below it.
type Level int

const (
	None Level = iota
	View
	Comment
	Edit
)

func (l Level) String() string {
	switch l {
	case View:
		return "view"
	case Comment:
		return "comment"
	case Edit:
		return "edit"
	default:
		return "none"
	}
}

// ParseLevel maps a share permission string to its Level. Only the
// three grantable levels are valid; "none" is never stored.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "view":
		return View, true
	case "comment":
		return Comment, true
	case "edit":
		return Edit, true
	default:
		return None, false
	}
}

// ShareReader looks up the share granted to an identity on a document,
// returning "" when none exists.
type ShareReader interface {
	GetShareLevel(ctx context.Context, documentID, identityID string) (string, error)
}

type Resolver struct {
	shares ShareReader
}

func NewResolver(shares ShareReader) *Resolver {
	return &Resolver{shares: shares}
}

// Resolve returns the identity's level on the document: the creator
// holds edit, a share grants its own level, and a public document
// grants view to everyone else. The result is computed fresh on every
// call and must not be cached; a share revoked between two operations
// takes effect on the second.
func (r *Resolver) Resolve(ctx context.Context, identityID string, doc store.Document) (Level, error) {
	if identityID != "" && identityID == doc.CreatedBy {
		return Edit, nil
	}

	if identityID != "" {
		permission, err := r.shares.GetShareLevel(ctx, doc.ID, identityID)
		if err != nil {
			return None, fmt.Errorf("resolve share: %w", err)
		}
		if permission != "" {
			level, ok := ParseLevel(permission)
			if !ok {
				return None, fmt.Errorf("resolve share: unknown permission %q", permission)
			}
			return level, nil
		}
	}

	if doc.IsPublic {
		return View, nil
	}
	return None, nil
}
