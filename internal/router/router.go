package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/assessment"
	"github.com/Asgar77/goodminds-app/internal/config"
	"github.com/Asgar77/goodminds-app/internal/handlers"
	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Repo     *repository.Repository
	Catalog  *assessment.Catalog
	Attempts *assessment.Registry
	Voice    *voice.Manager
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, handlers.ErrorResponse{
		Error:     "Too many attempts. Try again in " + time.Until(info.ResetTime).Round(time.Second).String() + ".",
		Retryable: true,
	})
}

func Setup(log *zap.Logger, conf config.ServerConfig, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", csrfTokenHeaderKey, requestIDHeader},
		ExposeHeaders:    []string{csrfTokenHeaderKey, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "same-origin",
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	store := cookie.NewStore([]byte(conf.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("goodmind_session", store))
	router.Use(CSRFProtection(log))
	router.Use(UserLoaderMiddleware(log, deps.Repo))

	authHandler := handlers.NewAuthHandler(log, deps.Repo, deps.Voice, deps.Attempts)
	assessmentHandler := handlers.NewAssessmentHandler(log, deps.Repo, deps.Catalog, deps.Attempts)
	moodHandler := handlers.NewMoodHandler(log, deps.Repo)
	chartsHandler := handlers.NewChartsHandler(log, deps.Repo)
	voiceHandler := handlers.NewVoiceHandler(log, deps.Repo, deps.Voice)
	userHandler := handlers.NewUserHandler(log, deps.Repo, deps.Voice)
	streamHandler := handlers.NewStreamHandler(log, deps.Repo.Store())

	limit := conf.LoginPerMinute
	if limit == 0 {
		limit = 5
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: limit,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.GET("/csrf", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		auth.POST("/register", limiter, authHandler.Register)
		auth.POST("/login", limiter, authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", AuthRequired(), authHandler.Me)
	}

	authorized := api.Group("/")
	authorized.Use(AuthRequired())
	{
		assessments := authorized.Group("/assessments")
		{
			assessments.GET("", assessmentHandler.List)
			assessments.GET("/:id", assessmentHandler.Get)
			assessments.POST("/:id/attempt", assessmentHandler.Start)
			assessments.GET("/:id/attempt", assessmentHandler.Attempt)
			assessments.PUT("/:id/attempt/answers", assessmentHandler.Answer)
			assessments.GET("/:id/attempt/result", assessmentHandler.Result)
			assessments.POST("/:id/attempt/save", assessmentHandler.Save)
		}
		authorized.GET("/results", assessmentHandler.ListResults)
		authorized.GET("/results/:id", assessmentHandler.GetResult)
		authorized.GET("/progress", assessmentHandler.Progress)

		authorized.GET("/moods/options", moodHandler.Options)
		authorized.GET("/moods", moodHandler.ListMoods)
		authorized.POST("/moods", moodHandler.AddMood)
		authorized.DELETE("/moods/:id", moodHandler.DeleteMood)
		authorized.GET("/journal", moodHandler.ListJournal)
		authorized.POST("/journal", moodHandler.AddJournalEntry)
		authorized.DELETE("/journal/:id", moodHandler.DeleteJournalEntry)

		charts := authorized.Group("/charts")
		{
			charts.GET("/scores", chartsHandler.Scores)
			charts.GET("/moods", chartsHandler.Moods)
			charts.GET("/mood-distribution", chartsHandler.MoodDistribution)
		}

		voiceRoutes := authorized.Group("/voice")
		{
			voiceRoutes.GET("", voiceHandler.State)
			voiceRoutes.POST("/start", voiceHandler.Start)
			voiceRoutes.POST("/utterance", voiceHandler.Utterance)
			voiceRoutes.POST("/capture-error", voiceHandler.CaptureFailure)
			voiceRoutes.POST("/mute", voiceHandler.Mute)
			voiceRoutes.POST("/end", voiceHandler.End)
			voiceRoutes.GET("/clips/:id", voiceHandler.Clip)
			voiceRoutes.GET("/sessions", voiceHandler.Sessions)
		}

		authorized.GET("/dashboard", userHandler.Dashboard)
		profile := authorized.Group("/profile")
		{
			profile.GET("", userHandler.GetProfile)
			profile.PUT("", userHandler.UpdateProfile)
			profile.PUT("/password", userHandler.UpdatePassword)
			profile.PUT("/reminder", userHandler.UpdateReminder)
			profile.DELETE("", userHandler.DeleteAccount)
		}
		authorized.GET("/settings", userHandler.GetSettings)
		authorized.PUT("/settings", userHandler.UpdateSettings)

		authorized.GET("/stream/*path", streamHandler.Stream)
	}

	return router
}
