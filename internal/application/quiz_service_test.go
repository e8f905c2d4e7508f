package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quizhub/internal/domain/entity"
	repo "github.com/oksasatya/quizhub/internal/domain/repository"
)

// memQuizRepo is an in-memory QuizRepository for service tests.
type memQuizRepo struct {
	mu        sync.Mutex
	seq       int
	quizzes   map[string]*entity.Quiz
	questions map[string][]entity.Question
	scores    map[string][]entity.Score

	lastLeaderboardLimit int
}

func newMemQuizRepo() *memQuizRepo {
	return &memQuizRepo{
		quizzes:   make(map[string]*entity.Quiz),
		questions: make(map[string][]entity.Question),
		scores:    make(map[string][]entity.Score),
	}
}

func (m *memQuizRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memQuizRepo) CreateQuiz(_ context.Context, q *entity.Quiz, questions []entity.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.ID = m.nextID("quiz")
	q.CreatedAt = time.Now()
	cp := *q
	m.quizzes[q.ID] = &cp
	qs := make([]entity.Question, len(questions))
	for i, qu := range questions {
		qu.ID = m.nextID("question")
		qu.QuizID = q.ID
		qu.Position = i
		qs[i] = qu
	}
	m.questions[q.ID] = qs
	return nil
}

func (m *memQuizRepo) GetQuiz(_ context.Context, id string) (*entity.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *memQuizRepo) ListQuizzes(_ context.Context) ([]entity.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Quiz, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, *q)
	}
	return out, nil
}

func (m *memQuizRepo) ListQuestions(_ context.Context, quizID string) ([]entity.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qs := m.questions[quizID]
	out := make([]entity.Question, len(qs))
	copy(out, qs)
	return out, nil
}

func (m *memQuizRepo) RecordScore(_ context.Context, s *entity.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID("score")
	s.CreatedAt = time.Now()
	m.scores[s.QuizID] = append(m.scores[s.QuizID], *s)
	return nil
}

func (m *memQuizRepo) ListScores(_ context.Context, quizID string) ([]entity.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Score, len(m.scores[quizID]))
	copy(out, m.scores[quizID])
	return out, nil
}

func (m *memQuizRepo) Leaderboard(_ context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLeaderboardLimit = limit
	return []entity.LeaderboardEntry{}, nil
}

func newTestQuizService() (*QuizService, *memQuizRepo) {
	r := newMemQuizRepo()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewQuizService(r, logger, nil, ""), r
}

func sampleQuestions() []QuestionInput {
	return []QuestionInput{
		{Text: "Capital of France?", OptionA: "Berlin", OptionB: "Paris", OptionC: "Rome", OptionD: "Madrid", CorrectAnswer: "B"},
		{Text: "2+2?", OptionA: "4", OptionB: "5", OptionC: "3", OptionD: "22", CorrectAnswer: "A"},
		{Text: "Red planet?", OptionA: "Venus", OptionB: "Jupiter", OptionC: "Mars", OptionD: "Saturn", CorrectAnswer: "C"},
	}
}

func TestCreateQuizValidation(t *testing.T) {
	svc, _ := newTestQuizService()
	ctx := context.Background()

	if _, err := svc.CreateQuiz(ctx, "t1", "Empty", nil); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("no questions err = %v, want ErrNoQuestions", err)
	}

	bad := sampleQuestions()
	bad[1].CorrectAnswer = "E"
	if _, err := svc.CreateQuiz(ctx, "t1", "Bad option", bad); !errors.Is(err, ErrBadAnswerOption) {
		t.Errorf("bad option err = %v, want ErrBadAnswerOption", err)
	}
}

func TestCreateQuizNormalizesAnswerCase(t *testing.T) {
	svc, r := newTestQuizService()
	ctx := context.Background()

	qs := sampleQuestions()
	qs[0].CorrectAnswer = " b "
	quiz, err := svc.CreateQuiz(ctx, "t1", "Mixed case", qs)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, _ := r.ListQuestions(ctx, quiz.ID)
	if stored[0].CorrectAnswer != "B" {
		t.Errorf("stored answer = %q, want B", stored[0].CorrectAnswer)
	}
}

func TestSubmitScoring(t *testing.T) {
	svc, r := newTestQuizService()
	ctx := context.Background()

	quiz, err := svc.CreateQuiz(ctx, "t1", "Warmup", sampleQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	qs, _ := r.ListQuestions(ctx, quiz.ID)

	tests := []struct {
		name    string
		answers map[string]string
		want    int
	}{
		{
			name:    "all correct",
			answers: map[string]string{qs[0].ID: "B", qs[1].ID: "A", qs[2].ID: "C"},
			want:    3,
		},
		{
			name:    "case and whitespace tolerated",
			answers: map[string]string{qs[0].ID: " b ", qs[1].ID: "a", qs[2].ID: "c"},
			want:    3,
		},
		{
			name:    "partial",
			answers: map[string]string{qs[0].ID: "B", qs[1].ID: "D", qs[2].ID: "C"},
			want:    2,
		},
		{
			name:    "missing answers score zero",
			answers: map[string]string{qs[0].ID: "B"},
			want:    1,
		},
		{
			name:    "unknown question ids ignored",
			answers: map[string]string{"nope": "A", qs[1].ID: "A"},
			want:    1,
		},
		{
			name:    "empty submission",
			answers: map[string]string{},
			want:    0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := svc.Submit(ctx, "student-1", quiz.ID, tc.answers)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if rec.Score != tc.want {
				t.Errorf("score = %d, want %d", rec.Score, tc.want)
			}
			if rec.Total != len(qs) {
				t.Errorf("total = %d, want %d", rec.Total, len(qs))
			}
		})
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	svc, _ := newTestQuizService()
	if _, err := svc.Submit(context.Background(), "student-1", "missing", nil); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}

func TestGetQuizStripsAnswersForNonOwner(t *testing.T) {
	svc, _ := newTestQuizService()
	ctx := context.Background()

	quiz, err := svc.CreateQuiz(ctx, "teacher-1", "Warmup", sampleQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, qs, err := svc.GetQuizWithQuestions(ctx, quiz.ID, "student-1")
	if err != nil {
		t.Fatalf("get as student: %v", err)
	}
	for _, q := range qs {
		if q.CorrectAnswer != "" {
			t.Fatalf("question %s leaks correct answer %q to non-owner", q.ID, q.CorrectAnswer)
		}
	}

	_, qs, err = svc.GetQuizWithQuestions(ctx, quiz.ID, "teacher-1")
	if err != nil {
		t.Fatalf("get as owner: %v", err)
	}
	for _, q := range qs {
		if q.CorrectAnswer == "" {
			t.Fatalf("owner should see the correct answer for %s", q.ID)
		}
	}
}

func TestScoresOwnerOnly(t *testing.T) {
	svc, _ := newTestQuizService()
	ctx := context.Background()

	quiz, err := svc.CreateQuiz(ctx, "teacher-1", "Warmup", sampleQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Submit(ctx, "student-1", quiz.ID, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Scores(ctx, "student-1", quiz.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner err = %v, want ErrForbidden", err)
	}
	scores, err := svc.Scores(ctx, "teacher-1", quiz.ID)
	if err != nil {
		t.Fatalf("owner scores: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("scores len = %d, want 1", len(scores))
	}
	if _, err := svc.Scores(ctx, "teacher-1", "missing"); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("unknown quiz err = %v, want ErrQuizNotFound", err)
	}
}

func TestLeaderboardLimitClamp(t *testing.T) {
	svc, r := newTestQuizService()
	ctx := context.Background()

	for _, in := range []int{0, -5, 101} {
		if _, err := svc.Leaderboard(ctx, in); err != nil {
			t.Fatalf("leaderboard(%d): %v", in, err)
		}
		if r.lastLeaderboardLimit != 20 {
			t.Errorf("limit %d clamped to %d, want 20", in, r.lastLeaderboardLimit)
		}
	}
	if _, err := svc.Leaderboard(ctx, 50); err != nil {
		t.Fatalf("leaderboard(50): %v", err)
	}
	if r.lastLeaderboardLimit != 50 {
		t.Errorf("limit 50 passed through as %d", r.lastLeaderboardLimit)
	}
}

func TestSearchQuizzesWithoutES(t *testing.T) {
	svc, _ := newTestQuizService()
	out, err := svc.SearchQuizzes(context.Background(), "warmup", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("results = %d, want none without a search backend", len(out))
	}
}
