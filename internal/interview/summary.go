package interview

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/callinterview/internal/notifier"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/samber/lo"
)

const summaryTimeLayout = "2006-01-02 15:04:05"

// buildSummary expects the responses of one call ordered by question index.
func buildSummary(responses []repository.InterviewResponse, questionCount int, timezone string, loc *time.Location) notifier.InterviewSummary {
	loc = safeLocation(loc)
	first := responses[0]
	startedAt := first.CreatedAt
	endedAt := lo.MaxBy(responses, func(a, b repository.InterviewResponse) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	}).UpdatedAt

	durationSeconds := int64(endedAt.Sub(startedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	answers := lo.Map(responses, func(r repository.InterviewResponse, _ int) notifier.SummaryAnswer {
		a := notifier.SummaryAnswer{
			QuestionIndex:            r.QuestionIndex,
			Question:                 r.QuestionText,
			SpokenAnswer:             r.SpokenAnswer,
			TranscriptStatus:         string(r.TranscriptStatus),
			RecordingURL:             r.RecordingURI,
			RecordingDurationSeconds: r.RecordingDurationSeconds,
		}
		if r.TranscriptText != nil {
			a.Transcript = *r.TranscriptText
		}
		return a
	})

	summary := notifier.InterviewSummary{
		SchemaVersion:   notifier.SummarySchemaVersion,
		CallID:          first.CallID,
		PhoneNumber:     first.PhoneNumber,
		CallStatus:      string(responses[len(responses)-1].CallStatus),
		StartAt:         startedAt.In(loc).Format(time.RFC3339),
		EndAt:           endedAt.In(loc).Format(time.RFC3339),
		Timezone:        timezone,
		DurationSeconds: durationSeconds,
		QuestionCount:   questionCount,
		AnsweredCount:   lo.CountBy(responses, func(r repository.InterviewResponse) bool { return r.Answered() }),
		Answers:         answers,
	}
	summary.Text = buildSummaryText(summary, startedAt, endedAt, loc)
	return summary
}

func buildSummaryText(s notifier.InterviewSummary, startedAt, endedAt time.Time, loc *time.Location) string {
	lines := []string{
		fmt.Sprintf("Phone number: %s", s.PhoneNumber),
		fmt.Sprintf("Call: %s (%s)", s.CallID, s.CallStatus),
		fmt.Sprintf("Period: %s ~ %s (%s)", startedAt.In(loc).Format(summaryTimeLayout), endedAt.In(loc).Format(summaryTimeLayout), s.Timezone),
		fmt.Sprintf("Answered: %d of %d", s.AnsweredCount, s.QuestionCount),
		"",
	}
	for _, a := range s.Answers {
		lines = append(lines, fmt.Sprintf("Q%d: %s", a.QuestionIndex+1, a.Question))
		lines = append(lines, "A: "+answerText(a))
		if a.RecordingDurationSeconds != nil {
			lines = append(lines, fmt.Sprintf("   recording %s", formatElapsedHMS(time.Duration(*a.RecordingDurationSeconds)*time.Second)))
		}
	}
	return strings.Join(lines, "\n")
}

func answerText(a notifier.SummaryAnswer) string {
	switch {
	case a.Transcript != "":
		return a.Transcript
	case a.SpokenAnswer != "":
		return a.SpokenAnswer
	case a.RecordingURL == "" && a.RecordingDurationSeconds == nil:
		return summaryNoAnswer
	case a.TranscriptStatus == string(repository.TranscriptStatusPending):
		return summaryTranscriptWait
	default:
		return summaryTranscriptFailed
	}
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
