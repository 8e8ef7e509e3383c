package projects

// Question is one required input field of a department component.
type Question struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// questionBank maps department components to their required fields. The set
// is static; answers for unknown components are rejected at the boundary.
var questionBank = map[string][]Question{
	"Finans": {
		{ID: "finance_details", Label: "Genel finansal durum"},
		{ID: "cash_flow", Label: "Nakit akışı"},
		{ID: "budget_status", Label: "Bütçe gerçekleşmesi"},
		{ID: "outstanding_invoices", Label: "Açık faturalar"},
	},
	"İnşaat": {
		{ID: "site_progress", Label: "Şantiye ilerlemesi"},
		{ID: "completion_pct", Label: "Tamamlanma yüzdesi"},
		{ID: "material_status", Label: "Malzeme durumu"},
		{ID: "safety_incidents", Label: "İş güvenliği olayları"},
	},
	"Satış": {
		{ID: "units_sold", Label: "Satılan birimler"},
		{ID: "pipeline", Label: "Satış hattı"},
		{ID: "pricing_notes", Label: "Fiyatlandırma notları"},
	},
	"Hukuk": {
		{ID: "permits", Label: "İzin ve ruhsatlar"},
		{ID: "litigation", Label: "Devam eden davalar"},
	},
	"İnsan Kaynakları": {
		{ID: "headcount", Label: "Personel sayısı"},
		{ID: "hiring_notes", Label: "İşe alım notları"},
	},
}

// QuestionBank returns the full component → questions mapping.
func QuestionBank() map[string][]Question {
	out := make(map[string][]Question, len(questionBank))
	for k, v := range questionBank {
		out[k] = append([]Question(nil), v...)
	}
	return out
}

// KnownComponent reports whether a component name belongs to the bank or is
// the raw-content special case.
func KnownComponent(name string) bool {
	if name == RawContentComponent {
		return true
	}
	_, ok := questionBank[name]
	return ok
}

// ComponentNames lists the bank's component names.
func ComponentNames() []string {
	names := make([]string, 0, len(questionBank))
	for k := range questionBank {
		names = append(names, k)
	}
	return names
}
