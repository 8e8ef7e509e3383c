package prompt

import "fmt"

// GetDraftSystemPrompt fixes the structure every drafted report must follow.
func GetDraftSystemPrompt() string {
	return `You are the reporting analyst of a holding company. You draft investor reports in Turkish from departmental inputs.

Requirements:
- The report must contain, in this order: executive summary, project status, financial analysis, operational data, projections, recommendations.
- Write flowing prose under clear section headings; no markdown code fences.
- Use only the supplied departmental data and documents. Do not invent figures.
- When a section has no supporting data, state that briefly instead of speculating.`
}

// GetDraftUserPrompt embeds the assembled payload and optional user notes.
func GetDraftUserPrompt(projectName, payload, notes string) string {
	msg := fmt.Sprintf("Proje: %s\n\nDepartman verileri:\n%s", projectName, payload)
	if notes != "" {
		msg += "\n\nEk notlar:\n" + notes
	}
	return msg
}
