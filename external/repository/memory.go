package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/google/uuid"
)

// MemoryRepository keeps responses in process memory. Data is lost on restart.
type MemoryRepository struct {
	mu        sync.Mutex
	responses map[string]*repository.InterviewResponse
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{responses: make(map[string]*repository.InterviewResponse)}
}

func (r *MemoryRepository) CreateResponse(_ context.Context, input repository.CreateResponseInput) (*repository.InterviewResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.responses {
		if existing.CallID == input.CallID && existing.QuestionIndex == input.QuestionIndex {
			return nil, repository.ErrDuplicateQuestion
		}
	}
	resp := &repository.InterviewResponse{
		ID:               uuid.NewString(),
		CallID:           input.CallID,
		PhoneNumber:      input.PhoneNumber,
		QuestionIndex:    input.QuestionIndex,
		QuestionText:     input.QuestionText,
		TranscriptStatus: repository.TranscriptStatusPending,
		CallStatus:       input.CallStatus,
		CreatedAt:        input.CreatedAt,
		UpdatedAt:        input.CreatedAt,
	}
	r.responses[resp.ID] = resp
	return cloneResponse(resp), nil
}

func (r *MemoryRepository) UpdateRecording(_ context.Context, input repository.UpdateRecordingInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.responses[input.ResponseID]
	if !ok {
		return nil
	}
	resp.RecordingID = input.RecordingID
	resp.RecordingURI = input.RecordingURI
	resp.RecordingDurationSeconds = cloneInt(input.DurationSeconds)
	resp.UpdatedAt = input.UpdatedAt
	return nil
}

func (r *MemoryRepository) UpdateSpokenAnswer(_ context.Context, input repository.UpdateSpokenAnswerInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resp, ok := r.responses[input.ResponseID]; ok {
		resp.SpokenAnswer = input.SpokenAnswer
		resp.UpdatedAt = input.UpdatedAt
	}
	return nil
}

func (r *MemoryRepository) UpdateTranscript(_ context.Context, input repository.UpdateTranscriptInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.responses[input.ResponseID]
	if !ok {
		return nil
	}
	resp.TranscriptStatus = input.Status
	resp.TranscriptText = transcriptTextArg(input)
	resp.UpdatedAt = input.UpdatedAt
	return nil
}

func (r *MemoryRepository) UpdateCallStatus(_ context.Context, input repository.UpdateCallStatusInput) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, resp := range r.responses {
		if resp.CallID != input.CallID {
			continue
		}
		resp.CallStatus = input.Status
		resp.UpdatedAt = input.UpdatedAt
		n++
	}
	return n, nil
}

func (r *MemoryRepository) GetResponse(_ context.Context, id string) (*repository.InterviewResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.responses[id]
	if !ok {
		return nil, nil
	}
	return cloneResponse(resp), nil
}

func (r *MemoryRepository) GetResponseByRecordingID(_ context.Context, recordingID string) (*repository.InterviewResponse, error) {
	if recordingID == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.RecordingID == recordingID {
			return cloneResponse(resp), nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListResponsesByCallID(ctx context.Context, callID string) ([]repository.InterviewResponse, error) {
	list, err := r.ListResponses(ctx, repository.ResponseFilter{CallID: callID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].QuestionIndex < list[j].QuestionIndex })
	return list, nil
}

func (r *MemoryRepository) ListResponses(_ context.Context, f repository.ResponseFilter) ([]repository.InterviewResponse, error) {
	r.mu.Lock()
	var list []repository.InterviewResponse
	for _, resp := range r.responses {
		if f.CallID != "" && resp.CallID != f.CallID {
			continue
		}
		if f.PhoneNumber != "" && resp.PhoneNumber != f.PhoneNumber {
			continue
		}
		if f.TranscriptStatus != "" && resp.TranscriptStatus != f.TranscriptStatus {
			continue
		}
		if f.CallStatus != "" && resp.CallStatus != f.CallStatus {
			continue
		}
		if f.HasRecording && resp.RecordingID == "" {
			continue
		}
		list = append(list, *cloneResponse(resp))
	}
	r.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.CallID != b.CallID {
			return a.CallID < b.CallID
		}
		return a.QuestionIndex < b.QuestionIndex
	})
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func cloneResponse(r *repository.InterviewResponse) *repository.InterviewResponse {
	c := *r
	c.RecordingDurationSeconds = cloneInt(r.RecordingDurationSeconds)
	if r.TranscriptText != nil {
		t := *r.TranscriptText
		c.TranscriptText = &t
	}
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
