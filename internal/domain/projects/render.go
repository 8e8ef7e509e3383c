package projects

import "context"

// InlineImage is one working-tree asset, base64-inlined for the renderer.
type InlineImage struct {
	Component string
	Filename  string
	DataURI   string
}

// RenderInput carries everything the HTML renderer needs for one report.
type RenderInput struct {
	ProjectName string
	ReportText  string
	ReportDate  string
	Images      []InlineImage
	UseAILayout bool
}

// Renderer port producing a complete HTML document. usedAI reports whether
// the AI-assisted layout produced the output; a request for AI layout can
// still come back false when the renderer fell back to the template.
type Renderer interface {
	Render(ctx context.Context, in RenderInput) (html string, usedAI bool, err error)
}

// PDFEngine port converting HTML to PDF bytes.
type PDFEngine interface {
	Render(ctx context.Context, html string) ([]byte, error)
	// RenderFallback produces a minimal plain-text PDF when the styled
	// render fails.
	RenderFallback(ctx context.Context, text string) ([]byte, error)
}
