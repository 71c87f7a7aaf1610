// Package client talks to the Google Slides and Drive APIs
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aouyang1/autoslides/api/models"
	drive "google.golang.org/api/drive/v2"
	"google.golang.org/api/option"
	slides "google.golang.org/api/slides/v1"
)

// emuPerPoint converts English Metric Units to points.
const emuPerPoint = 12700

// visibilityFields are sent even when false, otherwise unpublishing would patch
// nothing.
var visibilityFields = []string{"Published", "PublishedOutsideDomain", "PublishAuto"}

// GoogleClient is the production adapter for the presentation and revision ports.
// The http.Client is expected to attach credentials.
type GoogleClient struct {
	slides *slides.Service
	drive  *drive.Service
}

// NewGoogleClient builds the Slides and Drive services. Empty endpoints keep the
// public Google endpoints.
func NewGoogleClient(ctx context.Context, slidesEndpoint, driveEndpoint string, client *http.Client) (*GoogleClient, error) {
	if client == nil {
		client = &http.Client{}
	}

	slidesOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if slidesEndpoint != "" {
		slidesOpts = append(slidesOpts, option.WithEndpoint(slidesEndpoint))
	}
	slidesSvc, err := slides.NewService(ctx, slidesOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create slides service: %w", err)
	}

	driveOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if driveEndpoint != "" {
		driveOpts = append(driveOpts, option.WithEndpoint(driveEndpoint))
	}
	driveSvc, err := drive.NewService(ctx, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GoogleClient{slides: slidesSvc, drive: driveSvc}, nil
}

func points(d *slides.Dimension) float64 {
	if d == nil {
		return 0
	}
	if d.Unit == "EMU" {
		return d.Magnitude / emuPerPoint
	}
	return d.Magnitude
}

func collectCharts(elements []*slides.PageElement, ids []string) []string {
	for _, el := range elements {
		if el == nil {
			continue
		}
		if el.SheetsChart != nil {
			ids = append(ids, el.ObjectId)
		}
		if el.ElementGroup != nil {
			ids = collectCharts(el.ElementGroup.Children, ids)
		}
	}
	return ids
}

// GetPresentation fetches the title, page size and linked charts of a presentation.
func (gc *GoogleClient) GetPresentation(ctx context.Context, presentationID string) (*models.Presentation, error) {
	resp, err := gc.slides.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}

	p := &models.Presentation{
		ID:   resp.PresentationId,
		Name: resp.Title,
	}
	if p.ID == "" {
		p.ID = presentationID
	}
	if resp.PageSize != nil {
		p.PageWidth = points(resp.PageSize.Width)
		p.PageHeight = points(resp.PageSize.Height)
	}
	for _, slide := range resp.Slides {
		if slide != nil {
			p.ChartIDs = collectCharts(slide.PageElements, p.ChartIDs)
		}
	}
	return p, nil
}

// RefreshCharts reloads the given linked charts from their spreadsheets.
func (gc *GoogleClient) RefreshCharts(ctx context.Context, presentationID string, chartIDs []string) error {
	if len(chartIDs) == 0 {
		return nil
	}

	req := &slides.BatchUpdatePresentationRequest{}
	for _, id := range chartIDs {
		req.Requests = append(req.Requests, &slides.Request{
			RefreshSheetsChart: &slides.RefreshSheetsChartRequest{ObjectId: id},
		})
	}

	if _, err := gc.slides.Presentations.BatchUpdate(presentationID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to refresh charts: %w", err)
	}

	slog.Info("refreshed linked charts", "presentation_id", presentationID, "count", len(chartIDs))
	return nil
}

// ListRevisions returns one page of a file's revisions.
func (gc *GoogleClient) ListRevisions(ctx context.Context, fileID, pageToken string, maxResults int) (*models.RevisionList, error) {
	call := gc.drive.Revisions.List(fileID).MaxResults(int64(maxResults)).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}

	list := &models.RevisionList{NextPageToken: resp.NextPageToken}
	for _, rev := range resp.Items {
		if rev != nil {
			list.Items = append(list.Items, models.Revision{ID: rev.Id})
		}
	}
	return list, nil
}

// PatchRevision updates the visibility flags of a revision.
func (gc *GoogleClient) PatchRevision(ctx context.Context, fileID, revisionID string, v models.Visibility) error {
	rev := &drive.Revision{
		Published:              v.Published,
		PublishedOutsideDomain: v.PublishedOutsideDomain,
		PublishAuto:            v.PublishAuto,
		ForceSendFields:        visibilityFields,
	}
	if _, err := gc.drive.Revisions.Patch(fileID, revisionID, rev).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to patch revision %s: %w", revisionID, err)
	}
	return nil
}
