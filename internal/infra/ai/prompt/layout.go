package prompt

import (
	"fmt"
	"strings"

	domai "github.com/aydinholding/report-service/internal/domain/ai"
)

// GetLayoutSystemPrompt states the structural rules the generated HTML must
// honor. The renderer verifies them afterwards with a non-fatal sanity pass.
func GetLayoutSystemPrompt() string {
	return `You are an HTML layout engine for investor reports. You must return one complete, self-contained HTML document and nothing else (no markdown, no commentary, no code fences).

Structural rules:
- The document starts with <!DOCTYPE html> or <html> and ends with </html>.
- Every supplied image must appear exactly once, inside a <figure> element with a <figcaption> naming its owning component.
- Images, the logo and the background must be embedded using the exact data URIs given below, byte for byte. Never shorten, re-encode or placeholder a data URI.
- Apply the supplied style configuration (colors, fonts) through a <style> block in <head>.
- The report text must appear in full; do not summarize or drop sections.`
}

// GetLayoutUserPrompt packs the drafted text, style config and processed
// images into one user message.
func GetLayoutUserPrompt(req domai.LayoutRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n\nStyle configuration (JSON):\n%s\n\nReport text:\n%s\n", req.ProjectName, req.StyleJSON, req.ReportText)
	if req.LogoURI != "" {
		fmt.Fprintf(&b, "\nLogo data URI:\n%s\n", req.LogoURI)
	}
	if req.BackgroundURI != "" {
		fmt.Fprintf(&b, "\nBackground data URI:\n%s\n", req.BackgroundURI)
	}
	for _, img := range req.Images {
		fmt.Fprintf(&b, "\nImage (component %q, file %q):\n%s\n", img.Component, img.Filename, img.DataURI)
	}
	return b.String()
}
