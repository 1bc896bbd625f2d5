// Package api is the HTTP transport for the summarization pipeline.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/aryanarora07/podlyze/internal/app/services"
	"github.com/aryanarora07/podlyze/internal/domain/auth"
	"github.com/aryanarora07/podlyze/internal/platform/config"
	"github.com/aryanarora07/podlyze/internal/platform/errors"
	"github.com/aryanarora07/podlyze/internal/utils"
)

// Service wires the application services to their routes.
type Service struct {
	logger    *utils.Logger
	config    *config.Config
	summary   *services.SummaryService
	chat      *services.ChatService
	translate *services.TranslateService
	accounts  *auth.Service
}

func NewService(
	cfg *config.Config,
	logger *utils.Logger,
	summary *services.SummaryService,
	chat *services.ChatService,
	translate *services.TranslateService,
	accounts *auth.Service,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "api.new", "logger is required")
	}
	return &Service{
		logger:    logger,
		config:    cfg,
		summary:   summary,
		chat:      chat,
		translate: translate,
		accounts:  accounts,
	}, nil
}

// Register mounts all pipeline routes on the API group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/summarize", s.handleSummarize)
	router.GET("/progress", s.handleProgressLatest)
	router.GET("/progress/:id", s.handleProgressByID)
	router.POST("/chat", s.handleChat)
	router.POST("/translate", s.handleTranslate)
	router.GET("/summaries", s.handleSummaries)

	authGroup := router.Group("/auth")
	authGroup.POST("/signup", s.handleSignup)
	authGroup.POST("/login", s.handleLogin)

	s.logger.InfoTag("HTTP", "api routes registered")
	return nil
}
