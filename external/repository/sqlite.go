package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db    *sql.DB
	newID func() string
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, newID: uuid.NewString}
}

// OpenSQLite opens the database file (":memory:" works too) and applies the
// schema. SQLite allows one writer at a time, so the pool is capped at one
// connection.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunSQLiteMigration(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteRepository(db), nil
}

func (r *SQLiteRepository) CreateResponse(ctx context.Context, input repository.CreateResponseInput) (*repository.InterviewResponse, error) {
	id := r.newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interview_responses (id, call_id, phone_number, question_index, question_text, transcript_status, call_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 'pending', ?, ?, ?)`,
		id, input.CallID, input.PhoneNumber, input.QuestionIndex, input.QuestionText, string(input.CallStatus), input.CreatedAt, input.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, repository.ErrDuplicateQuestion
		}
		return nil, err
	}
	return &repository.InterviewResponse{
		ID:               id,
		CallID:           input.CallID,
		PhoneNumber:      input.PhoneNumber,
		QuestionIndex:    input.QuestionIndex,
		QuestionText:     input.QuestionText,
		TranscriptStatus: repository.TranscriptStatusPending,
		CallStatus:       input.CallStatus,
		CreatedAt:        input.CreatedAt,
		UpdatedAt:        input.CreatedAt,
	}, nil
}

func (r *SQLiteRepository) UpdateRecording(ctx context.Context, input repository.UpdateRecordingInput) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interview_responses
		 SET recording_id = ?, recording_uri = ?, recording_duration_seconds = ?, updated_at = ?
		 WHERE id = ?`,
		input.RecordingID, input.RecordingURI, input.DurationSeconds, input.UpdatedAt, input.ResponseID)
	return err
}

func (r *SQLiteRepository) UpdateSpokenAnswer(ctx context.Context, input repository.UpdateSpokenAnswerInput) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interview_responses SET spoken_answer = ?, updated_at = ? WHERE id = ?`,
		input.SpokenAnswer, input.UpdatedAt, input.ResponseID)
	return err
}

func (r *SQLiteRepository) UpdateTranscript(ctx context.Context, input repository.UpdateTranscriptInput) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interview_responses SET transcript_status = ?, transcript_text = ?, updated_at = ? WHERE id = ?`,
		string(input.Status), transcriptTextArg(input), input.UpdatedAt, input.ResponseID)
	return err
}

func (r *SQLiteRepository) UpdateCallStatus(ctx context.Context, input repository.UpdateCallStatusInput) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE interview_responses SET call_status = ?, updated_at = ? WHERE call_id = ?`,
		string(input.Status), input.UpdatedAt, input.CallID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *SQLiteRepository) GetResponse(ctx context.Context, id string) (*repository.InterviewResponse, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM interview_responses WHERE id = ?`, id)
	resp, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (r *SQLiteRepository) GetResponseByRecordingID(ctx context.Context, recordingID string) (*repository.InterviewResponse, error) {
	if recordingID == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM interview_responses WHERE recording_id = ? LIMIT 1`, recordingID)
	resp, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (r *SQLiteRepository) ListResponsesByCallID(ctx context.Context, callID string) ([]repository.InterviewResponse, error) {
	return r.list(ctx,
		`SELECT `+responseColumns+` FROM interview_responses WHERE call_id = ? ORDER BY question_index ASC`, callID)
}

func (r *SQLiteRepository) ListResponses(ctx context.Context, filter repository.ResponseFilter) ([]repository.InterviewResponse, error) {
	tail, args := buildFilter(filter, func(int) string { return "?" })
	return r.list(ctx, `SELECT `+responseColumns+` FROM interview_responses`+tail, args...)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]repository.InterviewResponse, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.InterviewResponse
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *resp)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
