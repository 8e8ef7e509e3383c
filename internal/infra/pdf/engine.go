package pdf

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// companyName appears in the printed footer of every report.
const companyName = "Aydın Holding"

// baseStylesheet is always applied: A4 pages, 1.5cm margins. The footer is
// rendered by the print engine, not CSS.
const baseStylesheet = `
@page { size: A4; margin: 1.5cm; }
html, body { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
`

const footerTemplate = `<div style="font-size:9px; width:100%; text-align:center; color:#6b7a8f;">` +
	companyName + ` — <span class="pageNumber"></span>/<span class="totalPages"></span></div>`

const headerTemplate = `<div></div>`

// Engine converts HTML to PDF bytes through one shared headless Chrome
// instance. Pages are created per render and closed afterwards.
type Engine struct {
	launcher *launcher.Launcher
	browser  *rod.Browser

	// ExtraStylesheet is the optional external stylesheet file appended
	// after the base stylesheet.
	ExtraStylesheet string
}

func New(extraStylesheetPath string) (*Engine, error) {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	extra := ""
	if extraStylesheetPath != "" {
		data, err := os.ReadFile(extraStylesheetPath)
		if err != nil {
			browser.Close()
			l.Cleanup()
			return nil, fmt.Errorf("read stylesheet %s: %w", extraStylesheetPath, err)
		}
		extra = string(data)
	}

	return &Engine{launcher: l, browser: browser, ExtraStylesheet: extra}, nil
}

func (e *Engine) Close() {
	if e.browser != nil {
		e.browser.Close()
	}
	if e.launcher != nil {
		e.launcher.Cleanup()
	}
}

// Render converts a complete HTML document to PDF bytes.
func (e *Engine) Render(ctx context.Context, doc string) ([]byte, error) {
	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(InjectStylesheet(doc, baseStylesheet+e.ExtraStylesheet)); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	f := func(v float64) *float64 { return &v }
	r, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:     true,
		PreferCSSPageSize:   true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      headerTemplate,
		FooterTemplate:      footerTemplate,
		MarginTop:           f(0.59), // 1.5cm in inches
		MarginBottom:        f(0.59),
		MarginLeft:          f(0.59),
		MarginRight:         f(0.59),
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}

// RenderFallback produces a minimal plain-text PDF when the styled document
// could not be printed.
func (e *Engine) RenderFallback(ctx context.Context, text string) ([]byte, error) {
	doc := fmt.Sprintf(
		"<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head><body><pre style=\"font-family:Arial,sans-serif;white-space:pre-wrap;\">%s</pre></body></html>",
		html.EscapeString(text),
	)
	return e.Render(ctx, doc)
}

// InjectStylesheet inserts a <style> block before </head>, or wraps one at
// the top when the document has no head.
func InjectStylesheet(doc, css string) string {
	block := "<style>" + css + "</style>"
	if i := strings.Index(strings.ToLower(doc), "</head>"); i >= 0 {
		return doc[:i] + block + doc[i:]
	}
	return block + doc
}
