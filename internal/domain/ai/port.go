package ai

import "context"

// DraftRequest carries the assembled payload for prose generation.
type DraftRequest struct {
	ProjectName string
	Payload     string
	UserNotes   string
}

// LayoutRequest asks the model to lay out drafted prose as a full HTML page.
type LayoutRequest struct {
	ProjectName   string
	ReportText    string
	StyleJSON     string
	Images        []LayoutImage
	LogoURI       string
	BackgroundURI string
}

// LayoutImage is one processed asset offered to the layout model.
type LayoutImage struct {
	Component string
	Filename  string
	DataURI   string
}

// Drafter generates investor-report prose.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

// LayoutRenderer produces a complete HTML document from drafted prose.
type LayoutRenderer interface {
	RenderLayout(ctx context.Context, req LayoutRequest) (string, error)
}
