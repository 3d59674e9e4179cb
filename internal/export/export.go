package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/samber/lo"
	"github.com/tealeg/xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const sheetName = "Responses"

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

func (f Format) FileName() string {
	return "interview-responses." + string(f)
}

// Row is one exported interview response. Times are rendered in the export
// timezone.
type Row struct {
	CallID                   string `json:"call_id"`
	PhoneNumber              string `json:"phone_number"`
	QuestionNumber           int    `json:"question_number"`
	Question                 string `json:"question"`
	SpokenAnswer             string `json:"spoken_answer"`
	Transcript               string `json:"transcript"`
	TranscriptStatus         string `json:"transcript_status"`
	RecordingURL             string `json:"recording_url"`
	RecordingDurationSeconds *int   `json:"recording_duration_seconds"`
	CallStatus               string `json:"call_status"`
	CreatedAt                string `json:"created_at"`
	UpdatedAt                string `json:"updated_at"`
}

var header = []string{
	"Call ID",
	"Phone Number",
	"Question #",
	"Question",
	"Spoken Answer",
	"Transcript",
	"Transcript Status",
	"Recording URL",
	"Recording Duration (s)",
	"Call Status",
	"Created At",
	"Updated At",
}

func (r Row) values() []string {
	duration := ""
	if r.RecordingDurationSeconds != nil {
		duration = strconv.Itoa(*r.RecordingDurationSeconds)
	}
	return []string{
		r.CallID,
		r.PhoneNumber,
		strconv.Itoa(r.QuestionNumber),
		r.Question,
		r.SpokenAnswer,
		r.Transcript,
		r.TranscriptStatus,
		r.RecordingURL,
		duration,
		r.CallStatus,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

func Rows(responses []repository.InterviewResponse, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	return lo.Map(responses, func(r repository.InterviewResponse, _ int) Row {
		row := Row{
			CallID:                   r.CallID,
			PhoneNumber:              r.PhoneNumber,
			QuestionNumber:           r.QuestionIndex + 1,
			Question:                 r.QuestionText,
			SpokenAnswer:             r.SpokenAnswer,
			TranscriptStatus:         string(r.TranscriptStatus),
			RecordingURL:             r.RecordingURI,
			RecordingDurationSeconds: r.RecordingDurationSeconds,
			CallStatus:               string(r.CallStatus),
			CreatedAt:                r.CreatedAt.In(loc).Format(time.RFC3339),
			UpdatedAt:                r.UpdatedAt.In(loc).Format(time.RFC3339),
		}
		if r.TranscriptText != nil {
			row.Transcript = *r.TranscriptText
		}
		return row
	})
}

// Load reads the responses to export. Only completed calls are included
// unless all is set.
func Load(ctx context.Context, reader repository.ResponseReader, all bool) ([]repository.InterviewResponse, error) {
	filter := repository.ResponseFilter{}
	if !all {
		filter.CallStatus = repository.CallStatusCompleted
	}
	responses, err := reader.ListResponses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list responses for export: %w", err)
	}
	return responses, nil
}

func Write(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func WriteXLSX(w io.Writer, rows []Row) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().Value = h
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for i, v := range r.values() {
			cell := row.AddCell()
			switch {
			case i == 2:
				cell.SetInt(r.QuestionNumber)
			case i == 8 && r.RecordingDurationSeconds != nil:
				cell.SetInt(*r.RecordingDurationSeconds)
			default:
				cell.Value = v
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
