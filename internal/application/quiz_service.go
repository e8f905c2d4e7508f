package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quizhub/internal/domain/entity"
	repo "github.com/oksasatya/quizhub/internal/domain/repository"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrForbidden       = errors.New("forbidden")
	ErrNoQuestions     = errors.New("quiz needs at least one question")
	ErrBadAnswerOption = errors.New("correct answer must be one of A, B, C, D")
)

// QuizService covers the peripheral quiz surface: creation by teachers,
// taking by any authenticated user, score listing and the leaderboard.
type QuizService struct {
	Repo    repo.QuizRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewQuizService(r repo.QuizRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *QuizService {
	return &QuizService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex}
}

type QuestionInput struct {
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
}

// CreateQuiz inserts a quiz with its questions. Only teachers reach this
// through the role gate, but ownership is still recorded explicitly.
func (s *QuizService) CreateQuiz(ctx context.Context, teacherID, title string, questions []QuestionInput) (*entity.Quiz, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	qs := make([]entity.Question, 0, len(questions))
	for _, in := range questions {
		ans := strings.ToUpper(strings.TrimSpace(in.CorrectAnswer))
		switch ans {
		case "A", "B", "C", "D":
		default:
			return nil, ErrBadAnswerOption
		}
		qs = append(qs, entity.Question{
			Text:          in.Text,
			OptionA:       in.OptionA,
			OptionB:       in.OptionB,
			OptionC:       in.OptionC,
			OptionD:       in.OptionD,
			CorrectAnswer: ans,
		})
	}

	quiz := &entity.Quiz{Title: title, TeacherID: teacherID}
	if err := s.Repo.CreateQuiz(ctx, quiz, qs); err != nil {
		return nil, err
	}
	s.indexQuiz(ctx, quiz)
	return quiz, nil
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]entity.Quiz, error) {
	return s.Repo.ListQuizzes(ctx)
}

// GetQuizWithQuestions returns the quiz and its questions. Correct answers
// are stripped unless the viewer owns the quiz.
func (s *QuizService) GetQuizWithQuestions(ctx context.Context, quizID, viewerID string) (*entity.Quiz, []entity.Question, error) {
	quiz, err := s.Repo.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	if quiz.TeacherID != viewerID {
		for i := range questions {
			questions[i].CorrectAnswer = ""
		}
	}
	return quiz, questions, nil
}

// Submit grades an attempt: the score is the count of answers exactly
// matching the correct option letter. Missing or extra answers score zero.
func (s *QuizService) Submit(ctx context.Context, userID, quizID string, answers map[string]string) (*entity.Score, error) {
	if _, err := s.Repo.GetQuiz(ctx, quizID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	score := 0
	for _, q := range questions {
		if ans, ok := answers[q.ID]; ok && strings.ToUpper(strings.TrimSpace(ans)) == q.CorrectAnswer {
			score++
		}
	}

	rec := &entity.Score{UserID: userID, QuizID: quizID, Score: score, Total: len(questions)}
	if err := s.Repo.RecordScore(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Scores lists recorded attempts for a quiz; only the owning teacher may see them.
func (s *QuizService) Scores(ctx context.Context, requesterID, quizID string) ([]entity.Score, error) {
	quiz, err := s.Repo.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.TeacherID != requesterID {
		return nil, ErrForbidden
	}
	return s.Repo.ListScores(ctx, quizID)
}

func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.Leaderboard(ctx, limit)
}

// indexQuiz pushes the quiz document to Elasticsearch. Search is an
// accelerator, not the source of truth, so indexing failures only warn.
func (s *QuizService) indexQuiz(ctx context.Context, q *entity.Quiz) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         q.ID,
		"title":      q.Title,
		"teacher_id": q.TeacherID,
		"created_at": q.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: q.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("quiz_id", q.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("quiz_id", q.ID).Warn("es index response error")
	}
}

// SearchQuizzes performs a match search on quiz titles. Returns empty
// results when Elasticsearch is unavailable.
func (s *QuizService) SearchQuizzes(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"title": q,
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
