package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/Masterminds/sprig/v3"

	domai "github.com/aydinholding/report-service/internal/domain/ai"
	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// Palette mirrors the style config color set.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// DefaultPalette is used when no project-specific palette is configured.
var DefaultPalette = Palette{
	Primary:    "#1f3a5f",
	Secondary:  "#6b7a8f",
	Accent:     "#d9a441",
	Background: "#ffffff",
	Text:       "#222222",
}

// HTMLRenderer merges drafted prose, style config and inlined images into a
// complete HTML document. Templated mode is the baseline; the AI-assisted
// mode delegates layout to the model and falls back to the template when the
// response is unusable.
type HTMLRenderer struct {
	Layout        domai.LayoutRenderer // nil disables AI-assisted mode
	Palettes      map[string]Palette
	LogoURI       string
	BackgroundURI string

	tmpl *template.Template
}

func NewHTMLRenderer(layout domai.LayoutRenderer, palettes map[string]Palette, logoURI, backgroundURI string) (*HTMLRenderer, error) {
	tmpl, err := template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &HTMLRenderer{
		Layout:        layout,
		Palettes:      palettes,
		LogoURI:       logoURI,
		BackgroundURI: backgroundURI,
		tmpl:          tmpl,
	}, nil
}

type figureImage struct {
	Component string
	Filename  string
	DataURI   template.URL
}

type figureGroup struct {
	Component string
	Images    []figureImage
}

type templateData struct {
	ProjectName string
	ReportDate  string
	Palette     Palette
	HeroURI     template.URL
	Paragraphs  []string
	Groups      []figureGroup
}

func (r *HTMLRenderer) Render(ctx context.Context, in domain.RenderInput) (string, bool, error) {
	var html string
	var err error
	usedAI := false
	if in.UseAILayout && r.Layout != nil {
		html, err = r.renderAI(ctx, in)
		if err != nil {
			log.Printf("render: ai layout for %s failed, using template: %v", in.ProjectName, err)
			html = ""
		} else {
			usedAI = true
		}
	}
	if html == "" {
		html, err = r.renderTemplated(in)
		if err != nil {
			return "", false, err
		}
	}
	r.sanityCheck(in, html)
	return html, usedAI, nil
}

func (r *HTMLRenderer) paletteFor(project string) Palette {
	if p, ok := r.Palettes[project]; ok {
		return p
	}
	return DefaultPalette
}

func (r *HTMLRenderer) renderTemplated(in domain.RenderInput) (string, error) {
	componentOrder := make([]string, 0)
	seen := map[string]bool{}
	for _, img := range in.Images {
		if !seen[img.Component] {
			seen[img.Component] = true
			componentOrder = append(componentOrder, img.Component)
		}
	}

	groups := make([]figureGroup, 0, len(componentOrder))
	byComponent := map[string]*figureGroup{}
	for _, c := range componentOrder {
		groups = append(groups, figureGroup{Component: c})
		byComponent[c] = &groups[len(groups)-1]
	}
	var hero template.URL
	for _, img := range in.Images {
		// uploads are already component-tagged; the filename policy is a
		// second line of defense for assets copied in by hand
		comp := img.Component
		if comp == "" {
			matched, ok := MatchComponent(img.Filename, componentOrder)
			if !ok {
				continue
			}
			comp = matched
		}
		g := byComponent[comp]
		if g == nil {
			continue
		}
		g.Images = append(g.Images, figureImage{
			Component: comp,
			Filename:  img.Filename,
			DataURI:   template.URL(img.DataURI),
		})
		if hero == "" {
			hero = template.URL(img.DataURI)
		}
	}
	if hero == "" && r.LogoURI != "" {
		hero = template.URL(r.LogoURI)
	}

	data := templateData{
		ProjectName: in.ProjectName,
		ReportDate:  in.ReportDate,
		Palette:     r.paletteFor(in.ProjectName),
		HeroURI:     hero,
		Paragraphs:  splitParagraphs(in.ReportText),
		Groups:      groups,
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) renderAI(ctx context.Context, in domain.RenderInput) (string, error) {
	styleJSON, err := json.Marshal(r.paletteFor(in.ProjectName))
	if err != nil {
		return "", err
	}
	imgs := make([]domai.LayoutImage, 0, len(in.Images))
	for _, img := range in.Images {
		imgs = append(imgs, domai.LayoutImage{
			Component: img.Component,
			Filename:  img.Filename,
			DataURI:   img.DataURI,
		})
	}
	out, err := r.Layout.RenderLayout(ctx, domai.LayoutRequest{
		ProjectName:   in.ProjectName,
		ReportText:    in.ReportText,
		StyleJSON:     string(styleJSON),
		Images:        imgs,
		LogoURI:       r.LogoURI,
		BackgroundURI: r.BackgroundURI,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if !looksLikeHTML(out) {
		return "", fmt.Errorf("layout response is not an html document")
	}
	return out, nil
}

// looksLikeHTML is the cheap acceptance test for AI layout responses.
func looksLikeHTML(s string) bool {
	return strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}

// sanityCheck counts embedded images and warns about every known URI that is
// missing from the output. Non-fatal: the report is returned regardless.
func (r *HTMLRenderer) sanityCheck(in domain.RenderInput, html string) {
	imgTags := strings.Count(html, "<img")
	dataURIs := strings.Count(html, "data:image/")
	log.Printf("render: %s: %d <img> tags, %d data:image/ occurrences", in.ProjectName, imgTags, dataURIs)

	for _, img := range in.Images {
		if !strings.Contains(html, img.DataURI) {
			log.Printf("render: warning: image %s (%s) not embedded in output", img.Filename, img.Component)
		}
	}
	if r.LogoURI != "" && !strings.Contains(html, r.LogoURI) {
		log.Printf("render: warning: logo data URI not embedded in output")
	}
	if r.BackgroundURI != "" && in.UseAILayout && !strings.Contains(html, r.BackgroundURI) {
		log.Printf("render: warning: background data URI not embedded in output")
	}
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
