package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/quizhub/internal/container"
	"github.com/oksasatya/quizhub/internal/domain/entity"
	handlers "github.com/oksasatya/quizhub/internal/interface/http"
	"github.com/oksasatya/quizhub/internal/interface/middleware"
	"github.com/oksasatya/quizhub/pkg/helpers"
)

// QuizModule wires the quiz routes. Everything requires a session; quiz
// creation additionally requires the teacher role.
type QuizModule struct {
	Handler *handlers.QuizHandler
	JWT     *helpers.JWTManager
}

func NewQuizModule(h *handlers.QuizHandler, jwt *helpers.JWTManager) *QuizModule {
	return &QuizModule{Handler: h, JWT: jwt}
}

func (m *QuizModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	auth := rg.Group("/")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/quizzes", m.Handler.List)
		auth.GET("/quizzes/search", m.Handler.Search)
		auth.GET("/quizzes/:id", m.Handler.Get)
		auth.POST("/quizzes/:id/submissions", m.Handler.Submit)
		auth.GET("/quizzes/:id/scores", m.Handler.Scores)
		auth.GET("/leaderboard", m.Handler.Leaderboard)

		teacher := auth.Group("/")
		teacher.Use(middleware.RequireRole(entity.RoleTeacher))
		{
			teacher.POST("/quizzes", m.Handler.Create)
		}
	}
}
