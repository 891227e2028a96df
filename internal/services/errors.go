package services

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the target entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the requester is neither the owner nor elevated.
	ErrForbidden = errors.New("forbidden")
	// ErrRemoteFailure means a document-store or object-store call failed
	// badly enough that the operation could not complete.
	ErrRemoteFailure = errors.New("remote failure")
	// ErrConflict means the operation is already in progress elsewhere.
	ErrConflict = errors.New("conflict")
)

// ContentKind identifies one of the three owned content categories.
type ContentKind string

const (
	KindArticle   ContentKind = "article"
	KindEducation ContentKind = "education"
	KindWorkshop  ContentKind = "workshop"
)

// CascadeItemError records one per-item failure during a cascading delete.
// The item's record is left in place when its asset removal failed.
type CascadeItemError struct {
	Kind ContentKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
	Err  string      `json:"error"`
}

// CascadeSummary is returned to the caller of DeleteUser: per-category
// deleted counts, dangling references that were skipped, and any per-item
// failures.
type CascadeSummary struct {
	Deleted map[ContentKind]int         `json:"deleted"`
	Skipped map[ContentKind][]uuid.UUID `json:"skipped"`
	Errors  []CascadeItemError          `json:"errors"`
}

func NewCascadeSummary() *CascadeSummary {
	return &CascadeSummary{
		Deleted: map[ContentKind]int{},
		Skipped: map[ContentKind][]uuid.UUID{},
	}
}
