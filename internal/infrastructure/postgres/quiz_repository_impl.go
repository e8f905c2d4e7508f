package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/quizhub/internal/domain/entity"
	"github.com/oksasatya/quizhub/internal/domain/repository"
)

type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, q *entity.Quiz, questions []entity.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO quizzes (title, teacher_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, q.Title, q.TeacherID)
	if err := row.Scan(&q.ID, &q.CreatedAt); err != nil {
		return err
	}

	for i := range questions {
		qs := &questions[i]
		qs.QuizID = q.ID
		qs.Position = i
		row := tx.QueryRow(ctx, `
			INSERT INTO questions (quiz_id, question_text, option_a, option_b, option_c, option_d, correct_answer, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, qs.QuizID, qs.Text, qs.OptionA, qs.OptionB, qs.OptionC, qs.OptionD, qs.CorrectAnswer, qs.Position)
		if err := row.Scan(&qs.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *QuizRepository) GetQuiz(ctx context.Context, id string) (*entity.Quiz, error) {
	q := &entity.Quiz{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, teacher_id, created_at FROM quizzes WHERE id = $1
	`, id)
	if err := row.Scan(&q.ID, &q.Title, &q.TeacherID, &q.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]entity.Quiz, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, teacher_id, created_at FROM quizzes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Quiz
	for rows.Next() {
		var q entity.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.TeacherID, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuizRepository) ListQuestions(ctx context.Context, quizID string) ([]entity.Question, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quiz_id, question_text, option_a, option_b, option_c, option_d, correct_answer, position
		FROM questions
		WHERE quiz_id = $1
		ORDER BY position
	`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Question
	for rows.Next() {
		var q entity.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer, &q.Position); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuizRepository) RecordScore(ctx context.Context, s *entity.Score) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO scores (user_id, quiz_id, score, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, s.UserID, s.QuizID, s.Score, s.Total)
	return row.Scan(&s.ID, &s.CreatedAt)
}

func (r *QuizRepository) ListScores(ctx context.Context, quizID string) ([]entity.Score, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, quiz_id, score, total, created_at
		FROM scores
		WHERE quiz_id = $1
		ORDER BY created_at DESC
	`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Score
	for rows.Next() {
		var s entity.Score
		if err := rows.Scan(&s.ID, &s.UserID, &s.QuizID, &s.Score, &s.Total, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *QuizRepository) Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.user_id, u.name, SUM(s.score) AS total_score, COUNT(*) AS attempts
		FROM scores s
		JOIN users u ON u.id = s.user_id
		GROUP BY s.user_id, u.name
		ORDER BY total_score DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.LeaderboardEntry
	for rows.Next() {
		var e entity.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalScore, &e.Attempts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.QuizRepository = (*QuizRepository)(nil)
