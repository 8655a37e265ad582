package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"writium/config"
	"writium/handlers"
	"writium/helper"
	"writium/middleware"
	"writium/repositories"
	"writium/services"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cmd := &cli.Command{
		Name:  "writium",
		Usage: "document writing backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
				Sources: cli.EnvVars("WRITIUM_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.String("config"))
					if err != nil {
						return err
					}
					db, err := config.InitDB(cfg, log)
					if err != nil {
						return err
					}
					return serve(ctx, cfg, db, log)
				},
			},
			{
				Name:  "migrate",
				Usage: "create the database schema and seed defaults",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.String("config"))
					if err != nil {
						return err
					}
					db, err := config.InitDB(cfg, log)
					if err != nil {
						return err
					}
					if err := config.Migrate(db); err != nil {
						return err
					}
					log.Infow("migration complete")
					return nil
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatalw("exit", "error", err)
	}
}

func serve(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) error {
	router := newRouter(cfg, db, log)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.Warnw("closing database", "error", closeErr)
		}
	}
	return err
}

func newRouter(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *gin.Engine {
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	versionRepo := repositories.NewArticleVersionRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	authService := services.NewAuthService(userRepo)
	articleService := services.NewArticleService(articleRepo, versionRepo, commentRepo, userRepo, projectRepo)

	httpHelper := helper.NewHTTPHelper()
	authHandler := handlers.NewAuthHandler(authService, httpHelper)
	articleHandler := handlers.NewArticleHandler(articleService, httpHelper, cfg.App.BaseURL)
	exportHandler := handlers.NewExportHandler(httpHelper)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(corsMiddleware(cfg.App.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		status, dbStatus := http.StatusOK, "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status, dbStatus = http.StatusServiceUnavailable, "unreachable"
		}
		c.JSON(status, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  dbStatus,
		})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.ResolveActor(), middleware.Actor(), authHandler.Me)
	}

	articles := router.Group("/api/write-articles")
	{
		// Public surface: share links and export carry no session.
		shared := articles.Group("/shared")
		shared.Use(middleware.RateLimit(rate.Limit(5), 20))
		{
			shared.GET("/:token", articleHandler.GetShared)
			shared.PATCH("/:token", articleHandler.UpdateShared)
		}
		articles.POST("/export-docx", middleware.RateLimit(rate.Limit(2), 5), exportHandler.ExportDocx)

		protected := articles.Group("")
		protected.Use(middleware.ResolveActor(), middleware.Actor())
		{
			protected.GET("", articleHandler.List)
			protected.POST("", articleHandler.Create)
			protected.GET("/:id", articleHandler.Get)
			protected.PATCH("/:id", articleHandler.Update)
			protected.DELETE("/:id", articleHandler.Delete)

			protected.POST("/:id/share", articleHandler.MintShareToken)
			protected.DELETE("/:id/share", articleHandler.RevokeShareToken)

			protected.GET("/:id/versions", articleHandler.ListVersions)
			protected.POST("/:id/versions/clear", articleHandler.ClearVersions)
			protected.GET("/:id/versions/:versionId", articleHandler.GetVersion)
			protected.POST("/:id/versions/:versionId/restore", articleHandler.RestoreVersion)
			protected.DELETE("/:id/versions/:versionId", articleHandler.DeleteVersion)

			protected.GET("/:id/comments", articleHandler.ListComments)
			protected.POST("/:id/comments", articleHandler.AddComment)
			protected.DELETE("/:id/comments/:commentId", articleHandler.DeleteComment)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if len(allowed) == 0 {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-User-Id, X-User-Email, X-User-Name, X-Guest-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
