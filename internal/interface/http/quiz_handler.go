package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quizhub/internal/application"
	"github.com/oksasatya/quizhub/internal/domain/entity"
	"github.com/oksasatya/quizhub/pkg/response"
	"github.com/oksasatya/quizhub/pkg/validation"
)

type QuizHandler struct {
	Svc    *application.QuizService
	Logger *logrus.Logger
}

func NewQuizHandler(svc *application.QuizService, logger *logrus.Logger) *QuizHandler {
	return &QuizHandler{Svc: svc, Logger: logger}
}

type questionPayload struct {
	Text          string `json:"text" binding:"required"`
	OptionA       string `json:"option_a" binding:"required"`
	OptionB       string `json:"option_b" binding:"required"`
	OptionC       string `json:"option_c" binding:"required"`
	OptionD       string `json:"option_d" binding:"required"`
	CorrectAnswer string `json:"correct_answer" binding:"required,oneof=A B C D a b c d"`
}

type createQuizRequest struct {
	Title     string            `json:"title" binding:"required"`
	Questions []questionPayload `json:"questions" binding:"required,min=1,dive"`
}

type submitRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// Create POST /api/quizzes (teacher only; gated by RequireRole)
func (h *QuizHandler) Create(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	questions := make([]application.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, application.QuestionInput{
			Text:          q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	quiz, err := h.Svc.CreateQuiz(c.Request.Context(), c.GetString("userID"), req.Title, questions)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNoQuestions), errors.Is(err, application.ErrBadAnswerOption):
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		default:
			h.Logger.WithError(err).Error("create quiz failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to create quiz", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":         quiz.ID,
		"title":      quiz.Title,
		"teacher_id": quiz.TeacherID,
		"created_at": quiz.CreatedAt,
	}, "quiz created", nil)
}

// List GET /api/quizzes
func (h *QuizHandler) List(c *gin.Context) {
	quizzes, err := h.Svc.ListQuizzes(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list quizzes failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list quizzes", nil)
		return
	}
	response.Success(c, http.StatusOK, quizzesBody(quizzes), "quizzes", nil)
}

// Get GET /api/quizzes/:id
// Correct answers are included only for the owning teacher.
func (h *QuizHandler) Get(c *gin.Context) {
	quiz, questions, err := h.Svc.GetQuizWithQuestions(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, application.ErrQuizNotFound) {
			response.Error[any](c, http.StatusNotFound, "quiz not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get quiz failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load quiz", nil)
		return
	}

	qs := make([]gin.H, 0, len(questions))
	for _, q := range questions {
		item := gin.H{
			"id":       q.ID,
			"text":     q.Text,
			"option_a": q.OptionA,
			"option_b": q.OptionB,
			"option_c": q.OptionC,
			"option_d": q.OptionD,
		}
		if q.CorrectAnswer != "" {
			item["correct_answer"] = q.CorrectAnswer
		}
		qs = append(qs, item)
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":         quiz.ID,
		"title":      quiz.Title,
		"teacher_id": quiz.TeacherID,
		"questions":  qs,
	}, "quiz", nil)
}

// Submit POST /api/quizzes/:id/submissions
func (h *QuizHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	score, err := h.Svc.Submit(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Answers)
	if err != nil {
		if errors.Is(err, application.ErrQuizNotFound) {
			response.Error[any](c, http.StatusNotFound, "quiz not found", nil)
			return
		}
		h.Logger.WithError(err).Error("submit quiz failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to record submission", nil)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"score": score.Score,
		"total": score.Total,
	}, "submission recorded", nil)
}

// Scores GET /api/quizzes/:id/scores (owning teacher only)
func (h *QuizHandler) Scores(c *gin.Context) {
	scores, err := h.Svc.Scores(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrQuizNotFound):
			response.Error[any](c, http.StatusNotFound, "quiz not found", nil)
		case errors.Is(err, application.ErrForbidden):
			response.Error[any](c, http.StatusForbidden, "only the quiz owner can view scores", nil)
		default:
			h.Logger.WithError(err).Error("list scores failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to list scores", nil)
		}
		return
	}

	out := make([]gin.H, 0, len(scores))
	for _, s := range scores {
		out = append(out, gin.H{
			"user_id":    s.UserID,
			"score":      s.Score,
			"total":      s.Total,
			"created_at": s.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "scores", nil)
}

// Leaderboard GET /api/leaderboard
func (h *QuizHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.Svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.Logger.WithError(err).Error("leaderboard failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to load leaderboard", nil)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"user_id":     e.UserID,
			"name":        e.Name,
			"total_score": e.TotalScore,
			"attempts":    e.Attempts,
		})
	}
	response.Success(c, http.StatusOK, out, "leaderboard", nil)
}

// Search GET /api/quizzes/search?q=
func (h *QuizHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	results, err := h.Svc.SearchQuizzes(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("quiz search failed")
		response.Success(c, http.StatusOK, []map[string]any{}, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, results, "search results", nil)
}

func quizzesBody(quizzes []entity.Quiz) []gin.H {
	out := make([]gin.H, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, gin.H{
			"id":         q.ID,
			"title":      q.Title,
			"teacher_id": q.TeacherID,
			"created_at": q.CreatedAt,
		})
	}
	return out
}
