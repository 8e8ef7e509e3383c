package projects

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValueUnmarshalString(t *testing.T) {
	var v AnswerValue
	require.NoError(t, json.Unmarshal([]byte(`"250M TL"`), &v))
	assert.Equal(t, "250M TL", v.Text)
	assert.False(t, v.IsFile())
}

func TestAnswerValueUnmarshalSingleObject(t *testing.T) {
	raw := `{"filename":"finans-bilanco.png","relative_path":"images/finans-bilanco.png","type":"image"}`
	var v AnswerValue
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	require.True(t, v.IsFile())
	require.Len(t, v.Files, 1)
	assert.Equal(t, "finans-bilanco.png", v.Files[0].Filename)
}

func TestAnswerValueUnmarshalList(t *testing.T) {
	raw := `[{"filename":"a.png","relative_path":"images/a.png","type":"image"},
	         {"filename":"b.pdf","relative_path":"images/b.pdf","type":"pdf"}]`
	var v AnswerValue
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	require.True(t, v.IsFile())
	assert.Len(t, v.Files, 2)
}

func TestAnswerValueUnmarshalRejectsUnknownShape(t *testing.T) {
	var v AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`42`), &v))
}

func TestAnswerValueMarshalRoundTrip(t *testing.T) {
	text := AnswerValue{Text: "stabil"}
	data, err := json.Marshal(text)
	require.NoError(t, err)
	assert.JSONEq(t, `"stabil"`, string(data))

	files := AnswerValue{Files: []FileRef{{Filename: "a.png", RelativePath: "images/a.png", Type: "image"}}}
	data, err = json.Marshal(files)
	require.NoError(t, err)

	var back AnswerValue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, files.Files, back.Files)
}

func TestAppendFilesReplacesScalar(t *testing.T) {
	v := AnswerValue{Text: "eski cevap"}
	ref := FileRef{Filename: "a.png", RelativePath: "images/a.png", Type: "image"}
	out := v.AppendFiles(ref)
	require.True(t, out.IsFile())
	assert.Len(t, out.Files, 1)
	assert.Empty(t, out.Text)
}

func TestAppendFilesGrowsList(t *testing.T) {
	a := FileRef{Filename: "a.png"}
	b := FileRef{Filename: "b.png"}
	out := AnswerValue{Files: []FileRef{a}}.AppendFiles(b)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "b.png", out.Files[1].Filename)
}

func TestNewReportStartsInProgress(t *testing.T) {
	r := NewReport("r-1", "2026-08-01", time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, StatusInProgress, r.Status)
	assert.False(t, r.ReportGenerated)
	assert.False(t, r.IsFinalized)
	assert.NotNil(t, r.Components)
}
