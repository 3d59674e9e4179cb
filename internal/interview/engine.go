package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/callinterview/internal/callock"
	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/foxseedlab/callinterview/internal/metrics"
	"github.com/foxseedlab/callinterview/internal/notifier"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/foxseedlab/callinterview/internal/transcript"
	"github.com/samber/lo"
)

var (
	// ErrMissingCorrelation means a callback names a call, response or
	// recording that has no stored interview record.
	ErrMissingCorrelation = errors.New("no interview record matches the callback")
	ErrUnknownCallStatus  = errors.New("unknown call status")
	ErrNoRecording        = errors.New("response has no recording")
)

const (
	lockTimeout     = 10 * time.Second
	followUpTimeout = 5 * time.Minute
	notifyTimeout   = 30 * time.Second
)

type TranscriptFetcher interface {
	Fetch(ctx context.Context, recordingID string) transcript.Result
}

type Settings struct {
	Questions          []string
	Capture            instruction.Capture
	AnswerTimeoutSec   int
	RecordMaxLengthSec int
	Language           string
	Voice              string
	ProviderTranscribe bool
	GreetingMessage    string
	ClosingMessage     string
	ApologyMessage     string
	Timezone           string
	Location           *time.Location
	CallbackURL        func(path string) string
}

type AnsweredEvent struct {
	CallID string
	To     string
}

// CapturedEvent is a recording-finished or speech-result callback for one
// question.
type CapturedEvent struct {
	ResponseID      string
	CallID          string
	RecordingID     string
	RecordingURI    string
	DurationSeconds *int
	SpeechResult    string
}

type StatusEvent struct {
	CallID string
	Status string
}

type TranscriptionEvent struct {
	RecordingID string
	Status      string
	Text        string
}

type SweepReport struct {
	Checked   int
	Completed int
	Failed    int
	Pending   int
}

type Engine struct {
	repo     repository.Repository
	locker   callock.Locker
	fetcher  TranscriptFetcher
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	inFlight  map[string]int
	notifyDue map[string]bool
	wg        sync.WaitGroup
}

func NewEngine(settings Settings, repo repository.Repository, locker callock.Locker, fetcher TranscriptFetcher, n notifier.Notifier, m *metrics.Metrics) *Engine {
	if multi, ok := n.(notifier.Multi); ok && len(multi) == 0 {
		n = nil
	}
	return &Engine{
		repo:      repo,
		locker:    locker,
		fetcher:   fetcher,
		notifier:  n,
		metrics:   m,
		settings:  settings,
		now:       time.Now,
		inFlight:  make(map[string]int),
		notifyDue: make(map[string]bool),
	}
}

func (e *Engine) HandleCallAnswered(ctx context.Context, ev AnsweredEvent) (instruction.Instruction, error) {
	if ev.CallID == "" {
		return instruction.Instruction{}, ErrMissingCorrelation
	}
	slog.Info("call answered", "call_id", ev.CallID)

	var out instruction.Instruction
	notifyNow := false
	err := e.withCallLock(ctx, ev.CallID, func(ctx context.Context) error {
		st, err := e.loadState(ctx, ev.CallID)
		if err != nil {
			return err
		}
		if len(st.responses) == 0 {
			resp, err := e.createQuestion(ctx, ev.CallID, ev.To, 0, repository.CallStatusInProgress)
			if err == nil {
				out = e.askInstruction(resp)
				return nil
			}
			if !errors.Is(err, repository.ErrDuplicateQuestion) {
				return err
			}
			slog.Info("first question created elsewhere; reloading", "call_id", ev.CallID)
			if st, err = e.loadState(ctx, ev.CallID); err != nil {
				return err
			}
		}
		if st.terminal() {
			out = e.closingInstruction()
			return nil
		}
		if st.status != repository.CallStatusInProgress {
			if err := e.setCallStatus(ctx, ev.CallID, repository.CallStatusInProgress); err != nil {
				return err
			}
			st.status = repository.CallStatusInProgress
		}
		cur := st.last()
		if !cur.Answered() {
			out = e.askInstruction(cur)
			return nil
		}
		var finished bool
		out, finished, err = e.advance(ctx, st, cur)
		if finished {
			notifyNow = e.markEnded(ev.CallID)
		}
		return err
	})
	if err != nil {
		return instruction.Instruction{}, err
	}
	if notifyNow {
		e.notifyAsync(ev.CallID)
	}
	return out, nil
}

func (e *Engine) HandleAnswerCaptured(ctx context.Context, ev CapturedEvent) (instruction.Instruction, error) {
	if ev.ResponseID == "" {
		return instruction.Instruction{}, ErrMissingCorrelation
	}
	resp, err := e.repo.GetResponse(ctx, ev.ResponseID)
	if err != nil {
		return instruction.Instruction{}, fmt.Errorf("get response: %w", err)
	}
	if resp == nil || (ev.CallID != "" && ev.CallID != resp.CallID) {
		slog.Warn("answer callback does not match any response", "response_id", ev.ResponseID, "call_id", ev.CallID)
		return instruction.Instruction{}, ErrMissingCorrelation
	}
	callID := resp.CallID

	var out instruction.Instruction
	fetchRecording := ""
	notifyNow := false
	err = e.withCallLock(ctx, callID, func(ctx context.Context) error {
		st, err := e.loadState(ctx, callID)
		if err != nil {
			return err
		}
		cur := st.byID(resp.ID)
		if cur == nil {
			return ErrMissingCorrelation
		}
		now := e.now()

		if ev.RecordingID != "" && ev.RecordingID != cur.RecordingID {
			if err := e.repo.UpdateRecording(ctx, repository.UpdateRecordingInput{
				ResponseID:      cur.ID,
				RecordingID:     ev.RecordingID,
				RecordingURI:    ev.RecordingURI,
				DurationSeconds: ev.DurationSeconds,
				UpdatedAt:       now,
			}); err != nil {
				return fmt.Errorf("update recording: %w", err)
			}
			cur.RecordingID = ev.RecordingID
			fetchRecording = ev.RecordingID
			e.beginFollowUp(callID)
			e.metrics.AnswerCaptured(string(instruction.CaptureRecord))
		}
		speech := strings.TrimSpace(ev.SpeechResult)
		if speech != "" && speech != cur.SpokenAnswer {
			if err := e.repo.UpdateSpokenAnswer(ctx, repository.UpdateSpokenAnswerInput{
				ResponseID:   cur.ID,
				SpokenAnswer: speech,
				UpdatedAt:    now,
			}); err != nil {
				return fmt.Errorf("update spoken answer: %w", err)
			}
			cur.SpokenAnswer = speech
			if cur.RecordingID == "" && cur.TranscriptStatus != repository.TranscriptStatusCompleted {
				// Live recognition is the only transcript a speech answer gets.
				if err := e.writeTranscript(ctx, cur.ID, transcript.Result{Status: repository.TranscriptStatusCompleted, Text: speech, Source: transcript.SourceSpeech}); err != nil {
					return err
				}
			}
			e.metrics.AnswerCaptured(string(instruction.CaptureSpeech))
		}

		if st.byIndex(cur.QuestionIndex+1) != nil {
			slog.Info("answer callback already applied; repeating current instruction", "call_id", callID, "response_id", cur.ID, "question_index", cur.QuestionIndex)
			e.metrics.CallbackReplayed()
			out = e.currentInstruction(st)
			return nil
		}
		if st.terminal() {
			out = e.closingInstruction()
			return nil
		}
		if !cur.Answered() && cur.TranscriptStatus == repository.TranscriptStatusPending {
			slog.Info("no answer captured; moving on", "call_id", callID, "question_index", cur.QuestionIndex)
			if err := e.writeTranscript(ctx, cur.ID, transcript.Result{Status: repository.TranscriptStatusFailed, Source: transcript.SourceProvider}); err != nil {
				return err
			}
		}

		var finished bool
		out, finished, err = e.advance(ctx, st, cur)
		if finished {
			notifyNow = e.markEnded(callID)
		}
		return err
	})
	if err != nil {
		if fetchRecording != "" {
			e.endFollowUp(callID)
		}
		return instruction.Instruction{}, err
	}

	if fetchRecording != "" {
		e.wg.Add(1)
		go e.followUp(callID, resp.ID, fetchRecording)
	}
	if notifyNow {
		e.notifyAsync(callID)
	}
	return out, nil
}

func (e *Engine) HandleCallStatus(ctx context.Context, ev StatusEvent) error {
	if ev.CallID == "" {
		return ErrMissingCorrelation
	}
	status, ok := repository.ParseCallStatus(ev.Status)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCallStatus, ev.Status)
	}

	notifyNow := false
	err := e.withCallLock(ctx, ev.CallID, func(ctx context.Context) error {
		st, err := e.loadState(ctx, ev.CallID)
		if err != nil {
			return err
		}
		if len(st.responses) == 0 {
			return ErrMissingCorrelation
		}
		if st.terminal() && !status.IsTerminal() {
			slog.Debug("ignoring non-terminal status after terminal one", "call_id", ev.CallID, "current", st.status, "incoming", status)
			return nil
		}
		if st.status == status {
			return nil
		}
		if err := e.setCallStatus(ctx, ev.CallID, status); err != nil {
			return err
		}
		slog.Info("call status updated", "call_id", ev.CallID, "from", st.status, "to", status)
		if status.IsTerminal() && !st.terminal() {
			notifyNow = e.markEnded(ev.CallID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if notifyNow {
		e.notifyAsync(ev.CallID)
	}
	return nil
}

// HandleTranscription applies a transcript pushed by the provider. A
// completed transcript is never replaced.
func (e *Engine) HandleTranscription(ctx context.Context, ev TranscriptionEvent) error {
	resp, err := e.repo.GetResponseByRecordingID(ctx, ev.RecordingID)
	if err != nil {
		return fmt.Errorf("get response by recording: %w", err)
	}
	if resp == nil {
		return ErrMissingCorrelation
	}

	var res transcript.Result
	switch strings.ToLower(ev.Status) {
	case "completed":
		res = transcript.Result{Status: repository.TranscriptStatusCompleted, Text: ev.Text, Source: transcript.SourceProvider}
	case "failed", "absent":
		res = transcript.Result{Status: repository.TranscriptStatusFailed, Source: transcript.SourceProvider}
	default:
		slog.Debug("ignoring transcription callback", "recording_id", ev.RecordingID, "status", ev.Status)
		return nil
	}
	_, err = e.applyTranscript(ctx, resp.CallID, resp.ID, res)
	return err
}

// RefreshTranscript fetches the transcript for one response again, in the
// caller's goroutine, and returns the stored response afterwards.
func (e *Engine) RefreshTranscript(ctx context.Context, responseID string) (*repository.InterviewResponse, transcript.Result, error) {
	resp, err := e.repo.GetResponse(ctx, responseID)
	if err != nil {
		return nil, transcript.Result{}, fmt.Errorf("get response: %w", err)
	}
	if resp == nil {
		return nil, transcript.Result{}, ErrMissingCorrelation
	}
	if resp.RecordingID == "" {
		return resp, transcript.Result{}, ErrNoRecording
	}
	res := e.fetcher.Fetch(ctx, resp.RecordingID)
	updated, err := e.applyTranscript(ctx, resp.CallID, resp.ID, res)
	if err != nil {
		return nil, res, err
	}
	return updated, res, nil
}

// SweepPendingTranscripts re-fetches every pending transcript that has a
// recording and is not already being fetched.
func (e *Engine) SweepPendingTranscripts(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	list, err := e.repo.ListResponses(ctx, repository.ResponseFilter{
		TranscriptStatus: repository.TranscriptStatusPending,
		HasRecording:     true,
	})
	if err != nil {
		return report, fmt.Errorf("list pending responses: %w", err)
	}
	for _, resp := range list {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if e.hasFollowUp(resp.CallID) {
			continue
		}
		report.Checked++
		res := e.fetcher.Fetch(ctx, resp.RecordingID)
		updated, err := e.applyTranscript(ctx, resp.CallID, resp.ID, res)
		if err != nil {
			slog.Error("failed to apply swept transcript", "error", err, "response_id", resp.ID, "recording_id", resp.RecordingID)
			continue
		}
		switch updated.TranscriptStatus {
		case repository.TranscriptStatusCompleted:
			report.Completed++
		case repository.TranscriptStatusFailed:
			report.Failed++
		default:
			report.Pending++
		}
	}
	slog.Info("pending transcript sweep finished", "checked", report.Checked, "completed", report.Completed, "failed", report.Failed, "pending", report.Pending)
	return report, nil
}

// Wait blocks until every scheduled transcript follow-up and summary delivery
// has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) ApologyInstruction() instruction.Instruction {
	return instruction.Instruction{
		Utterance: e.settings.ApologyMessage,
		Capture:   instruction.CaptureNone,
		Language:  e.settings.Language,
		Voice:     e.settings.Voice,
		Hangup:    true,
	}
}

func (e *Engine) followUp(callID, responseID, recordingID string) {
	defer e.wg.Done()
	defer e.endFollowUp(callID)

	ctx, cancel := context.WithTimeout(context.Background(), followUpTimeout)
	defer cancel()
	res := e.fetcher.Fetch(ctx, recordingID)
	slog.Info("transcript fetch finished", "call_id", callID, "response_id", responseID, "recording_id", recordingID, "status", res.Status, "attempts", res.Attempts)
	if _, err := e.applyTranscript(ctx, callID, responseID, res); err != nil {
		slog.Error("failed to apply transcript", "error", err, "call_id", callID, "response_id", responseID)
	}
}

func (e *Engine) applyTranscript(ctx context.Context, callID, responseID string, res transcript.Result) (*repository.InterviewResponse, error) {
	var out *repository.InterviewResponse
	err := e.withCallLock(ctx, callID, func(ctx context.Context) error {
		cur, err := e.repo.GetResponse(ctx, responseID)
		if err != nil {
			return fmt.Errorf("get response: %w", err)
		}
		if cur == nil {
			return ErrMissingCorrelation
		}
		if cur.TranscriptStatus == repository.TranscriptStatusCompleted {
			out = cur
			return nil
		}
		if cur.TranscriptStatus == res.Status && res.Status != repository.TranscriptStatusCompleted {
			out = cur
			return nil
		}
		// failed only moves forward to completed.
		if cur.TranscriptStatus == repository.TranscriptStatusFailed && res.Status == repository.TranscriptStatusPending {
			out = cur
			return nil
		}
		if err := e.writeTranscript(ctx, responseID, res); err != nil {
			return err
		}
		updated, err := e.repo.GetResponse(ctx, responseID)
		if err != nil {
			return fmt.Errorf("get response: %w", err)
		}
		out = updated
		return nil
	})
	return out, err
}

func (e *Engine) writeTranscript(ctx context.Context, responseID string, res transcript.Result) error {
	if err := e.repo.UpdateTranscript(ctx, repository.UpdateTranscriptInput{
		ResponseID: responseID,
		Status:     res.Status,
		Text:       res.Text,
		UpdatedAt:  e.now(),
	}); err != nil {
		return fmt.Errorf("update transcript: %w", err)
	}
	e.metrics.TranscriptApplied(string(res.Status), res.Source)
	return nil
}

// advance creates the question after cur, or finishes the interview when cur
// was the last one.
func (e *Engine) advance(ctx context.Context, st callState, cur *repository.InterviewResponse) (instruction.Instruction, bool, error) {
	next := cur.QuestionIndex + 1
	if next < len(e.settings.Questions) {
		resp, err := e.createQuestion(ctx, cur.CallID, cur.PhoneNumber, next, st.status)
		if errors.Is(err, repository.ErrDuplicateQuestion) {
			reloaded, loadErr := e.loadState(ctx, cur.CallID)
			if loadErr != nil {
				return instruction.Instruction{}, false, loadErr
			}
			return e.currentInstruction(reloaded), false, nil
		}
		if err != nil {
			return instruction.Instruction{}, false, err
		}
		return e.askInstruction(resp), false, nil
	}

	if err := e.setCallStatus(ctx, cur.CallID, repository.CallStatusCompleted); err != nil {
		return instruction.Instruction{}, false, err
	}
	e.metrics.InterviewFinished()
	slog.Info("interview finished", "call_id", cur.CallID, "questions", len(st.responses))
	return e.closingInstruction(), true, nil
}

func (e *Engine) createQuestion(ctx context.Context, callID, phoneNumber string, index int, status repository.CallStatus) (*repository.InterviewResponse, error) {
	resp, err := e.repo.CreateResponse(ctx, repository.CreateResponseInput{
		CallID:        callID,
		PhoneNumber:   phoneNumber,
		QuestionIndex: index,
		QuestionText:  e.settings.Questions[index],
		CallStatus:    status,
		CreatedAt:     e.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateQuestion) {
			return nil, err
		}
		return nil, fmt.Errorf("create response: %w", err)
	}
	e.metrics.QuestionAsked()
	slog.Info("question created", "call_id", callID, "response_id", resp.ID, "question_index", index)
	return resp, nil
}

func (e *Engine) setCallStatus(ctx context.Context, callID string, status repository.CallStatus) error {
	if _, err := e.repo.UpdateCallStatus(ctx, repository.UpdateCallStatusInput{
		CallID:    callID,
		Status:    status,
		UpdatedAt: e.now(),
	}); err != nil {
		return fmt.Errorf("update call status: %w", err)
	}
	return nil
}

func (e *Engine) withCallLock(ctx context.Context, callID string, fn func(ctx context.Context) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	unlock, err := e.locker.Lock(lockCtx, callID)
	if err != nil {
		return fmt.Errorf("lock call %s: %w", callID, err)
	}
	defer unlock()
	return fn(ctx)
}

func (e *Engine) loadState(ctx context.Context, callID string) (callState, error) {
	list, err := e.repo.ListResponsesByCallID(ctx, callID)
	if err != nil {
		return callState{}, fmt.Errorf("list responses: %w", err)
	}
	st := callState{responses: list, total: len(e.settings.Questions)}
	if len(list) > 0 {
		st.status = list[len(list)-1].CallStatus
	}
	return st, nil
}

func (e *Engine) askInstruction(resp *repository.InterviewResponse) instruction.Instruction {
	utterance := questionUtterance(resp.QuestionIndex, len(e.settings.Questions), resp.QuestionText)
	if resp.QuestionIndex == 0 && e.settings.GreetingMessage != "" {
		utterance = e.settings.GreetingMessage + " " + utterance
	}
	in := instruction.Instruction{
		Utterance:        utterance,
		Capture:          e.settings.Capture,
		CallbackURL:      e.settings.CallbackURL(RecordingCallbackPath + "?response_id=" + url.QueryEscape(resp.ID)),
		TimeoutSeconds:   e.settings.AnswerTimeoutSec,
		MaxLengthSeconds: e.settings.RecordMaxLengthSec,
		Language:         e.settings.Language,
		Voice:            e.settings.Voice,
	}
	if in.Capture == instruction.CaptureRecord && e.settings.ProviderTranscribe {
		in.Transcribe = true
		in.TranscribeCallback = e.settings.CallbackURL(TranscriptionCallbackPath)
	}
	return in
}

func (e *Engine) closingInstruction() instruction.Instruction {
	return instruction.Instruction{
		Utterance: e.settings.ClosingMessage,
		Capture:   instruction.CaptureNone,
		Language:  e.settings.Language,
		Voice:     e.settings.Voice,
		Hangup:    true,
	}
}

func (e *Engine) currentInstruction(st callState) instruction.Instruction {
	if st.terminal() || st.finished() {
		return e.closingInstruction()
	}
	return e.askInstruction(st.last())
}

func (e *Engine) beginFollowUp(callID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight[callID]++
}

func (e *Engine) endFollowUp(callID string) {
	e.mu.Lock()
	e.inFlight[callID]--
	fire := false
	if e.inFlight[callID] <= 0 {
		delete(e.inFlight, callID)
		fire = e.notifyDue[callID]
		delete(e.notifyDue, callID)
	}
	e.mu.Unlock()
	if fire {
		e.notifyAsync(callID)
	}
}

func (e *Engine) hasFollowUp(callID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight[callID] > 0
}

// markEnded records that the call has ended and reports whether the summary
// can be sent right away. Otherwise it goes out when the last follow-up ends.
func (e *Engine) markEnded(callID string) bool {
	if e.notifier == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[callID] > 0 {
		e.notifyDue[callID] = true
		return false
	}
	return true
}

func (e *Engine) notifyAsync(callID string) {
	if e.notifier == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		list, err := e.repo.ListResponsesByCallID(ctx, callID)
		if err != nil {
			slog.Error("failed to load responses for summary", "error", err, "call_id", callID)
			return
		}
		if len(list) == 0 {
			return
		}
		summary := buildSummary(list, len(e.settings.Questions), e.settings.Timezone, e.settings.Location)
		if err := e.notifier.NotifyInterviewFinished(ctx, summary); err != nil {
			e.metrics.Notification(false)
			slog.Error("failed to deliver interview summary", "error", err, "call_id", callID)
			return
		}
		e.metrics.Notification(true)
		slog.Info("interview summary delivered", "call_id", callID)
	}()
}

type callState struct {
	responses []repository.InterviewResponse
	status    repository.CallStatus
	total     int
}

func (s callState) last() *repository.InterviewResponse {
	if len(s.responses) == 0 {
		return nil
	}
	return &s.responses[len(s.responses)-1]
}

func (s callState) byID(id string) *repository.InterviewResponse {
	for i := range s.responses {
		if s.responses[i].ID == id {
			return &s.responses[i]
		}
	}
	return nil
}

func (s callState) byIndex(index int) *repository.InterviewResponse {
	r, ok := lo.Find(s.responses, func(r repository.InterviewResponse) bool { return r.QuestionIndex == index })
	if !ok {
		return nil
	}
	return &r
}

func (s callState) terminal() bool {
	return s.status.IsTerminal()
}

func (s callState) finished() bool {
	last := s.last()
	return last != nil && len(s.responses) >= s.total && last.Answered()
}
