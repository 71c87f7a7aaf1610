// Package models tracks all api models for request and responses
package models

import "github.com/aouyang1/autoslides/settings"

// SettingsForm is the configuration form as posted by the browser. Checkboxes are
// pointers because unchecked boxes are not submitted at all.
type SettingsForm struct {
	SAdvance        string  `form:"sAdvance" json:"sAdvance" binding:"required"`
	SReload         string  `form:"sReload" json:"sReload" binding:"required"`
	MsFade          string  `form:"msFade" json:"msFade" binding:"required"`
	BackgroundColor string  `form:"backgroundColor" json:"backgroundColor" binding:"required"`
	Start           *string `form:"start" json:"start"`
	Repeat          *string `form:"repeat" json:"repeat"`
	HideMenu        *string `form:"hideMenu" json:"hideMenu"`
	HideBands       *string `form:"hideBands" json:"hideBands"`
	HideBorders     *string `form:"hideBorders" json:"hideBorders"`
}

// ToForm resolves missing checkboxes to false.
func (f SettingsForm) ToForm() settings.Form {
	return settings.Form{
		SAdvance:        f.SAdvance,
		SReload:         f.SReload,
		MsFade:          f.MsFade,
		BackgroundColor: f.BackgroundColor,
		Start:           settings.Checked(f.Start),
		Repeat:          settings.Checked(f.Repeat),
		HideMenu:        settings.Checked(f.HideMenu),
		HideBands:       settings.Checked(f.HideBands),
		HideBorders:     settings.Checked(f.HideBorders),
	}
}

type SettingsResponse struct {
	DocumentID string            `json:"document_id"`
	Settings   settings.Settings `json:"settings"`
	Checked    map[string]bool   `json:"checked"`
	Published  bool              `json:"published"`
	ChartCount int               `json:"chart_count"`
}

type PublishResponse struct {
	DocumentID string `json:"document_id"`
	Published  bool   `json:"published"`
	URL        string `json:"url,omitempty"`
	Message    string `json:"message"`
}

type ShortURLResponse struct {
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
}

type RefreshChartsResponse struct {
	Refreshed int    `json:"refreshed"`
	Message   string `json:"message"`
}

type AboutResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Presentation is the part of the host document the service needs.
type Presentation struct {
	ID   string
	Name string
	// Page size in points.
	PageWidth  float64
	PageHeight float64
	// ChartIDs are the object ids of charts linked to a spreadsheet.
	ChartIDs []string
}

type Revision struct {
	ID string `json:"id"`
}

// RevisionList is one page of a revision listing.
type RevisionList struct {
	Items         []Revision `json:"items"`
	NextPageToken string     `json:"nextPageToken"`
}

// Visibility is the public visibility of a revision.
type Visibility struct {
	Published              bool `json:"published"`
	PublishedOutsideDomain bool `json:"publishedOutsideDomain"`
	PublishAuto            bool `json:"publishAuto"`
}

// PublicVisibility sets all three flags to published.
func PublicVisibility(published bool) Visibility {
	return Visibility{
		Published:              published,
		PublishedOutsideDomain: published,
		PublishAuto:            published,
	}
}
