package repository

import (
	"strconv"
	"strings"

	"github.com/foxseedlab/callinterview/internal/repository"
)

const responseColumns = `id, call_id, phone_number, question_index, question_text, spoken_answer,
	recording_id, recording_uri, recording_duration_seconds, transcript_text, transcript_status,
	call_status, created_at, updated_at`

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (*repository.InterviewResponse, error) {
	var r repository.InterviewResponse
	var transcriptStatus, callStatus string
	err := row.Scan(
		&r.ID, &r.CallID, &r.PhoneNumber, &r.QuestionIndex, &r.QuestionText, &r.SpokenAnswer,
		&r.RecordingID, &r.RecordingURI, &r.RecordingDurationSeconds, &r.TranscriptText, &transcriptStatus,
		&callStatus, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.TranscriptStatus = repository.TranscriptStatus(transcriptStatus)
	r.CallStatus = repository.CallStatus(callStatus)
	return &r, nil
}

// buildFilter renders the WHERE/LIMIT tail for ListResponses. placeholder
// returns the bind marker for the n-th argument (1-based).
func buildFilter(f repository.ResponseFilter, placeholder func(n int) string) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, cond+" = "+placeholder(len(args)))
	}
	if f.CallID != "" {
		add("call_id", f.CallID)
	}
	if f.PhoneNumber != "" {
		add("phone_number", f.PhoneNumber)
	}
	if f.TranscriptStatus != "" {
		add("transcript_status", string(f.TranscriptStatus))
	}
	if f.CallStatus != "" {
		add("call_status", string(f.CallStatus))
	}
	if f.HasRecording {
		conds = append(conds, "recording_id <> ''")
	}

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY created_at ASC, call_id ASC, question_index ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(f.Limit))
	}
	return b.String(), args
}

func transcriptTextArg(input repository.UpdateTranscriptInput) *string {
	if input.Status != repository.TranscriptStatusCompleted {
		return nil
	}
	text := input.Text
	return &text
}
