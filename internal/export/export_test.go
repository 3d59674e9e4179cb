package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type fakeReader struct {
	repository.ResponseReader
	filter repository.ResponseFilter
	list   []repository.InterviewResponse
	err    error
}

func (f *fakeReader) ListResponses(_ context.Context, filter repository.ResponseFilter) ([]repository.InterviewResponse, error) {
	f.filter = filter
	return f.list, f.err
}

func sampleResponses() []repository.InterviewResponse {
	created := time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC)
	text := "Asha, Pune"
	duration := 12
	return []repository.InterviewResponse{
		{
			ID: "r1", CallID: "CA1", PhoneNumber: "+919876543210",
			QuestionIndex: 0, QuestionText: "Your name?",
			RecordingID: "RE1", RecordingURI: "https://api.example.com/RE1", RecordingDurationSeconds: &duration,
			TranscriptText: &text, TranscriptStatus: repository.TranscriptStatusCompleted,
			CallStatus: repository.CallStatusCompleted, CreatedAt: created, UpdatedAt: created.Add(time.Minute),
		},
		{
			ID: "r2", CallID: "CA1", PhoneNumber: "+919876543210",
			QuestionIndex: 1, QuestionText: "Your role?",
			SpokenAnswer:     "engineer",
			TranscriptStatus: repository.TranscriptStatusPending,
			CallStatus:       repository.CallStatusCompleted, CreatedAt: created.Add(time.Minute), UpdatedAt: created.Add(2 * time.Minute),
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"xlsx": FormatXLSX, ".CSV": FormatCSV, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "interview-responses.csv", FormatCSV.FileName())
}

func TestRows(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	rows := Rows(sampleResponses(), loc)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].QuestionNumber)
	assert.Equal(t, "Asha, Pune", rows[0].Transcript)
	assert.Equal(t, "2026-03-01T12:00:00+05:30", rows[0].CreatedAt)
	assert.Equal(t, "", rows[1].Transcript)
	assert.Equal(t, "engineer", rows[1].SpokenAnswer)
	assert.Nil(t, rows[1].RecordingDurationSeconds)
}

func TestLoad(t *testing.T) {
	reader := &fakeReader{list: sampleResponses()}

	got, err := Load(context.Background(), reader, false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, repository.CallStatusCompleted, reader.filter.CallStatus)

	_, err = Load(context.Background(), reader, true)
	require.NoError(t, err)
	assert.Equal(t, repository.CallStatus(""), reader.filter.CallStatus)

	reader.err = errors.New("db down")
	_, err = Load(context.Background(), reader, true)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Rows(sampleResponses(), time.UTC)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, "Asha, Pune", records[1][5])
	assert.Equal(t, "12", records[1][8])
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "pending", records[2][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, Rows(sampleResponses(), time.UTC)))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "+919876543210", decoded[0]["phone_number"])
	assert.Equal(t, float64(12), decoded[0]["recording_duration_seconds"])
	assert.Nil(t, decoded[1]["recording_duration_seconds"])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, Rows(sampleResponses(), time.UTC)))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, sheetName, sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Phone Number", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Your name?", sheet.Rows[1].Cells[3].Value)
	assert.Equal(t, "12", sheet.Rows[1].Cells[8].Value)
	assert.Equal(t, "engineer", sheet.Rows[2].Cells[4].Value)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("pdf"), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
