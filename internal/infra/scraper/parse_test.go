package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/aydinholding/report-service/internal/domain/invoices"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1.234,56 TL":   1234.56,
		"1.234.567,89":  1234567.89,
		"500,00 ₺":      500,
		"42":            42,
		"  75,5 TL ":    75.5,
	}
	for in, want := range cases {
		got, err := parseAmount(in)
		require.NoError(t, err, "input %q", in)
		assert.InDelta(t, want, got, 0.001, "input %q", in)
	}
}

func TestParseAmountErrors(t *testing.T) {
	for _, in := range []string{"", "TL", "abc", "1,2,3 TL"} {
		_, err := parseAmount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"15.08.2026", "15/08/2026", "2026-08-15"} {
		got, err := parseDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := parseDate("15 Ağustos 2026")
	assert.Error(t, err)
}

func validCells() []string {
	return []string{
		"INV-2026-001", "A-123", "ETTN-9f2", "01.08.2026", "31.08.2026",
		"Yılmaz İnşaat A.Ş.", "1.234,56 TL", "222,22 TL", "e-Fatura", "Onaylandı",
	}
}

func TestParseRow(t *testing.T) {
	inv, err := parseRow(validCells())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", inv.ID)
	assert.Equal(t, "A-123", inv.Number)
	assert.Equal(t, "ETTN-9f2", inv.ETTN)
	assert.Equal(t, "Yılmaz İnşaat A.Ş.", inv.Supplier)
	assert.InDelta(t, 1234.56, inv.Amount, 0.001)
	assert.InDelta(t, 222.22, inv.TaxAmount, 0.001)
	assert.Equal(t, "e-Fatura", inv.DocType)
	assert.Equal(t, "Onaylandı", inv.Status)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), inv.IssueDate)
}

func invoiceIDs(rows []*domain.Invoice) []string {
	ids := make([]string, 0, len(rows))
	for _, inv := range rows {
		ids = append(ids, inv.ID)
	}
	return ids
}

func TestDedupNew(t *testing.T) {
	rows := func(ids ...string) []*domain.Invoice {
		out := make([]*domain.Invoice, 0, len(ids))
		for _, id := range ids {
			out = append(out, &domain.Invoice{ID: id})
		}
		return out
	}

	cases := []struct {
		name      string
		rows      []*domain.Invoice
		processed map[string]bool
		want      []string
	}{
		{
			name:      "already processed rows are dropped",
			rows:      rows("INV-1", "INV-2"),
			processed: map[string]bool{"INV-1": true},
			want:      []string{"INV-2"},
		},
		{
			name:      "nothing processed keeps everything",
			rows:      rows("INV-1", "INV-2"),
			processed: map[string]bool{},
			want:      []string{"INV-1", "INV-2"},
		},
		{
			name:      "duplicate rows on one page collapse",
			rows:      rows("INV-1", "INV-1", "INV-2"),
			processed: map[string]bool{},
			want:      []string{"INV-1", "INV-2"},
		},
		{
			name:      "everything processed yields empty",
			rows:      rows("INV-1"),
			processed: map[string]bool{"INV-1": true},
			want:      []string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := dedupNew(tc.rows, tc.processed, map[string]bool{})
			assert.Equal(t, tc.want, invoiceIDs(got))
		})
	}
}

func TestDedupNewCarriesSeenAcrossPages(t *testing.T) {
	seen := map[string]bool{}
	processed := map[string]bool{"INV-1": true}

	page1 := dedupNew([]*domain.Invoice{{ID: "INV-1"}, {ID: "INV-2"}}, processed, seen)
	assert.Equal(t, []string{"INV-2"}, invoiceIDs(page1))

	// the portal repeats the last row of a page as the first of the next
	page2 := dedupNew([]*domain.Invoice{{ID: "INV-2"}, {ID: "INV-3"}}, processed, seen)
	assert.Equal(t, []string{"INV-3"}, invoiceIDs(page2))
}

func TestParseRowErrors(t *testing.T) {
	_, err := parseRow(validCells()[:9])
	assert.Error(t, err)

	cells := validCells()
	cells[0] = "   "
	_, err = parseRow(cells)
	assert.Error(t, err)

	cells = validCells()
	cells[3] = "yakında"
	_, err = parseRow(cells)
	assert.Error(t, err)

	cells = validCells()
	cells[6] = "bedelsiz"
	_, err = parseRow(cells)
	assert.Error(t, err)
}
