package reports

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	domain "github.com/aydinholding/report-service/internal/domain/projects"
)

// maxDocumentChars caps a single extracted document's contribution to the
// prompt payload.
const maxDocumentChars = 10000

// ComponentSection is the textual blob of one component's answers.
type ComponentSection struct {
	Component string
	Text      string
}

// DocumentExtract is one embedded document payload tagged with its owner.
type DocumentExtract struct {
	Component string
	Filename  string
	Content   string
}

// AssembledContent is the merged drafting payload for one report.
type AssembledContent struct {
	Sections  []ComponentSection
	Documents []DocumentExtract
}

// embeddedDocument is the filename+content shape some answers carry as a
// JSON string instead of plain text.
type embeddedDocument struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Assemble walks the report's components in name order, separating normal
// textual answers from embedded document payloads.
func Assemble(r *domain.Report) AssembledContent {
	var out AssembledContent

	names := make([]string, 0, len(r.Components))
	for name := range r.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		comp := r.Components[name]

		keys := make([]string, 0, len(comp.Answers))
		for k := range comp.Answers {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var lines []string
		for _, k := range keys {
			v := comp.Answers[k]
			if v.IsFile() {
				for _, f := range v.Files {
					lines = append(lines, fmt.Sprintf("%s: [ek dosya: %s]", k, f.Filename))
				}
				continue
			}
			if doc, ok := parseEmbeddedDocument(v.Text); ok {
				out.Documents = append(out.Documents, DocumentExtract{
					Component: name,
					Filename:  doc.Filename,
					Content:   truncate(doc.Content, maxDocumentChars),
				})
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", k, v.Text))
		}
		if len(lines) > 0 {
			out.Sections = append(out.Sections, ComponentSection{
				Component: name,
				Text:      strings.Join(lines, "\n"),
			})
		}
	}
	return out
}

// PromptPayload formats the assembled content for the drafting prompt.
func (a AssembledContent) PromptPayload() string {
	var b strings.Builder
	for _, s := range a.Sections {
		b.WriteString("## ")
		b.WriteString(s.Component)
		b.WriteString("\n")
		b.WriteString(s.Text)
		b.WriteString("\n\n")
	}
	for _, d := range a.Documents {
		fmt.Fprintf(&b, "## Belge (%s): %s\n%s\n\n", d.Component, d.Filename, d.Content)
	}
	return strings.TrimSpace(b.String())
}

func parseEmbeddedDocument(s string) (embeddedDocument, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return embeddedDocument{}, false
	}
	var doc embeddedDocument
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return embeddedDocument{}, false
	}
	if doc.Filename == "" || doc.Content == "" {
		return embeddedDocument{}, false
	}
	return doc, true
}

// truncate caps s at n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
