package router

import (
	"github.com/oksasatya/quizhub/internal/application"
	"github.com/oksasatya/quizhub/internal/container"
	pginfra "github.com/oksasatya/quizhub/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/quizhub/internal/interface/http"
	"github.com/oksasatya/quizhub/internal/router/modules"
)

// InitModules builds all feature modules from the container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	quizRepo := pginfra.NewQuizRepository(container.GetPGPool())

	// Avoid a typed-nil Publisher when RabbitMQ is not configured.
	var pub application.Publisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	authSvc := application.NewAuthService(
		userRepo,
		jwt,
		container.GetRedis(),
		pub,
		logger,
		cfg,
	)
	quizSvc := application.NewQuizService(
		quizRepo,
		logger,
		container.GetES(),
		cfg.ESQuizzesIndex,
	)
	profileSvc := application.NewProfileService(
		userRepo,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetRedis(),
		logger,
	)

	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	quizHandler := handlers.NewQuizHandler(quizSvc, logger)
	profileHandler := handlers.NewProfileHandler(profileSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewQuizModule(quizHandler, jwt))
	r.Add(modules.NewProfileModule(profileHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
