// Package publish makes the latest revision of a presentation public, or private again
package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aouyang1/autoslides/api/models"
	"github.com/aouyang1/autoslides/settings"
)

// revisionPageSize is the largest page the revision listing accepts.
const revisionPageSize = 1000

// Revisions is the host revision API.
type Revisions interface {
	ListRevisions(ctx context.Context, fileID, pageToken string, maxResults int) (*models.RevisionList, error)
	PatchRevision(ctx context.Context, fileID, revisionID string, v models.Visibility) error
}

var ErrNoRevisions = errors.New("presentation has no revisions")

// HostError is a failure of the revision API rather than of the settings store.
type HostError struct {
	Op  string
	Err error
}

func (e *HostError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *HostError) Unwrap() error {
	return e.Err
}

// LatestRevisionID walks every page of the listing and returns the id of the
// last revision.
func LatestRevisionID(ctx context.Context, revs Revisions, fileID string) (string, error) {
	var revisions []models.Revision
	pageToken := ""
	for {
		page, err := revs.ListRevisions(ctx, fileID, pageToken, revisionPageSize)
		if err != nil {
			return "", err
		}
		revisions = append(revisions, page.Items...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(revisions) == 0 {
		return "", ErrNoRevisions
	}
	return revisions[len(revisions)-1].ID, nil
}

type Publisher struct {
	revs Revisions
}

func NewPublisher(revs Revisions) *Publisher {
	return &Publisher{revs: revs}
}

// Publish makes the latest revision public and records it in the settings. A
// document published for the first time also gets its default settings, so the
// public page has something to render.
func (p *Publisher) Publish(ctx context.Context, documentID string, st *settings.Store) error {
	if err := p.setVisibility(ctx, documentID, true); err != nil {
		return err
	}

	if err := st.SetPublished(ctx, true); err != nil {
		return err
	}

	all, err := st.GetAll(ctx)
	if err != nil {
		return err
	}
	if !all.Initialized() {
		if _, err := st.ResetToDefaults(ctx); err != nil {
			return err
		}
	}

	slog.Info("presentation published", "document_id", documentID)
	return nil
}

// Unpublish takes the latest revision off the public web.
func (p *Publisher) Unpublish(ctx context.Context, documentID string, st *settings.Store) error {
	if err := p.setVisibility(ctx, documentID, false); err != nil {
		return err
	}

	if err := st.SetPublished(ctx, false); err != nil {
		return err
	}

	slog.Info("presentation unpublished", "document_id", documentID)
	return nil
}

func (p *Publisher) setVisibility(ctx context.Context, documentID string, published bool) error {
	revisionID, err := LatestRevisionID(ctx, p.revs, documentID)
	if err != nil {
		return &HostError{Op: "error getting presentation revisions", Err: err}
	}

	if err := p.revs.PatchRevision(ctx, documentID, revisionID, models.PublicVisibility(published)); err != nil {
		if published {
			return &HostError{Op: "error publishing presentation", Err: err}
		}
		return &HostError{Op: "error stopping publishing presentation", Err: err}
	}
	return nil
}
