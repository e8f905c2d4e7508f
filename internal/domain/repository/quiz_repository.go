package repository

import (
	"context"

	"github.com/oksasatya/quizhub/internal/domain/entity"
)

// QuizRepository persists quizzes, their questions and recorded scores.
type QuizRepository interface {
	// CreateQuiz inserts the quiz and all its questions in one transaction.
	CreateQuiz(ctx context.Context, q *entity.Quiz, questions []entity.Question) error
	GetQuiz(ctx context.Context, id string) (*entity.Quiz, error)
	ListQuizzes(ctx context.Context) ([]entity.Quiz, error)
	ListQuestions(ctx context.Context, quizID string) ([]entity.Question, error)
	RecordScore(ctx context.Context, s *entity.Score) error
	ListScores(ctx context.Context, quizID string) ([]entity.Score, error)
	Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
}
