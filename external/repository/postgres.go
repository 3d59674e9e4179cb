package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateResponse(ctx context.Context, input repository.CreateResponseInput) (*repository.InterviewResponse, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO interview_responses (call_id, phone_number, question_index, question_text, transcript_status, call_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'pending', $5, $6, $6)
		 RETURNING `+responseColumns,
		input.CallID, input.PhoneNumber, input.QuestionIndex, input.QuestionText, string(input.CallStatus), input.CreatedAt)
	resp, err := scanResponse(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, repository.ErrDuplicateQuestion
		}
		return nil, err
	}
	return resp, nil
}

func (r *PostgresRepository) UpdateRecording(ctx context.Context, input repository.UpdateRecordingInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE interview_responses
		 SET recording_id = $2, recording_uri = $3, recording_duration_seconds = $4, updated_at = $5
		 WHERE id = $1`,
		input.ResponseID, input.RecordingID, input.RecordingURI, input.DurationSeconds, input.UpdatedAt)
	return err
}

func (r *PostgresRepository) UpdateSpokenAnswer(ctx context.Context, input repository.UpdateSpokenAnswerInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE interview_responses SET spoken_answer = $2, updated_at = $3 WHERE id = $1`,
		input.ResponseID, input.SpokenAnswer, input.UpdatedAt)
	return err
}

func (r *PostgresRepository) UpdateTranscript(ctx context.Context, input repository.UpdateTranscriptInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE interview_responses SET transcript_status = $2, transcript_text = $3, updated_at = $4 WHERE id = $1`,
		input.ResponseID, string(input.Status), transcriptTextArg(input), input.UpdatedAt)
	return err
}

func (r *PostgresRepository) UpdateCallStatus(ctx context.Context, input repository.UpdateCallStatusInput) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE interview_responses SET call_status = $2, updated_at = $3 WHERE call_id = $1`,
		input.CallID, string(input.Status), input.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) GetResponse(ctx context.Context, id string) (*repository.InterviewResponse, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+responseColumns+` FROM interview_responses WHERE id = $1`, id)
	resp, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		// 22P02: the id is not a valid uuid, so it cannot match.
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (r *PostgresRepository) GetResponseByRecordingID(ctx context.Context, recordingID string) (*repository.InterviewResponse, error) {
	if recordingID == "" {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM interview_responses WHERE recording_id = $1 LIMIT 1`, recordingID)
	resp, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (r *PostgresRepository) ListResponsesByCallID(ctx context.Context, callID string) ([]repository.InterviewResponse, error) {
	return r.list(ctx,
		`SELECT `+responseColumns+` FROM interview_responses WHERE call_id = $1 ORDER BY question_index ASC`, callID)
}

func (r *PostgresRepository) ListResponses(ctx context.Context, filter repository.ResponseFilter) ([]repository.InterviewResponse, error) {
	tail, args := buildFilter(filter, func(n int) string { return "$" + strconv.Itoa(n) })
	return r.list(ctx, `SELECT `+responseColumns+` FROM interview_responses`+tail, args...)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]repository.InterviewResponse, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
