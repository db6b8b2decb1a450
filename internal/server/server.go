/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, services and the HTTP stack
// into a runnable dashboard process.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/drerries/wantedboard/internal/api"
	"github.com/drerries/wantedboard/internal/audit"
	"github.com/drerries/wantedboard/internal/auth"
	"github.com/drerries/wantedboard/internal/config"
	"github.com/drerries/wantedboard/internal/db"
	"github.com/drerries/wantedboard/internal/eventbus"
	"github.com/drerries/wantedboard/internal/events"
	"github.com/drerries/wantedboard/internal/history"
	"github.com/drerries/wantedboard/internal/logbuffer"
	"github.com/drerries/wantedboard/internal/media"
	"github.com/drerries/wantedboard/internal/messagelog"
	"github.com/drerries/wantedboard/internal/registry"
	"github.com/drerries/wantedboard/internal/reports"
	"github.com/drerries/wantedboard/internal/search"
	"github.com/drerries/wantedboard/internal/telemetry"
	"github.com/drerries/wantedboard/internal/voice"
)

// Server bundles the HTTP stack and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	logBuffer  *logbuffer.Buffer
	closers    []func() error

	db        *gorm.DB
	broker    events.Broker
	storage   media.Storage
	api       *api.API
	auditSvc  *audit.Service
	refresher *voice.Refresher

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logBuf *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("wantedboard-api"))
	router.Use(telemetry.MetricsMiddleware)
	// Skip the request timeout for websocket connections.
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		router:    router,
		logBuffer: logBuf,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout stays 0 so websocket event streams are not cut off; the
		// middleware timeout covers the regular routes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg, s.logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error {
		sqlDB, err := database.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	broker, err := s.initBroker()
	if err != nil {
		return err
	}
	s.broker = broker

	storage, err := s.initStorage()
	if err != nil {
		return err
	}
	s.storage = storage

	voiceSvc := voice.NewService(database, broker, s.logger)
	s.refresher = voice.NewRefresher(voiceSvc, broker, s.logger)

	registrySvc := registry.NewService(database, broker, s.logger)
	messagesSvc := messagelog.NewService(database, broker, s.logger)
	historySvc := history.NewService(database, s.logger)
	reportsSvc := reports.NewService(database, broker, s.logger)
	uploader := media.NewUploader(storage, s.logger)
	searchSvc := search.NewClient(s.cfg.BotSearchURL, s.logger)
	s.auditSvc = audit.NewService(database, s.logger)

	discord := auth.NewDiscordAuthenticator(
		database,
		s.cfg.DiscordClientID,
		s.cfg.DiscordClientSecret,
		s.cfg.DiscordRedirectURL,
	)

	s.api = api.New(api.Deps{
		DB:        database,
		Config:    s.cfg,
		Voice:     voiceSvc,
		Refresher: s.refresher,
		Registry:  registrySvc,
		Messages:  messagesSvc,
		History:   historySvc,
		Reports:   reportsSvc,
		Uploader:  uploader,
		Search:    searchSvc,
		Audit:     s.auditSvc,
		Discord:   discord,
		Broker:    broker,
		LogBuffer: s.logBuffer,
		Logger:    s.logger,
	})

	return nil
}

// initBroker selects the event fanout backend. Redis and NATS degrade to the
// in-memory bus when the backend is unreachable, so a single-instance deploy
// never fails to start over a missing broker.
func (s *Server) initBroker() (events.Broker, error) {
	nodeID := s.cfg.InstanceID
	if nodeID == "" {
		nodeID = uuid.NewString()
	}

	switch s.cfg.EventBus {
	case config.EventBusRedis:
		redisCfg := eventbus.DefaultRedisConfig()
		redisCfg.Addr = s.cfg.RedisAddr
		redisCfg.Password = s.cfg.RedisPassword
		redisCfg.DB = s.cfg.RedisDB

		bus, err := eventbus.NewRedisBus(redisCfg, nodeID, s.logger)
		if err != nil {
			return nil, fmt.Errorf("create Redis event bus: %w", err)
		}
		s.DeferClose(bus.Close)
		return bus, nil

	case config.EventBusNATS:
		bus, err := eventbus.NewNATSBus(s.cfg.NATSURL, nodeID, s.logger)
		if err != nil {
			return nil, fmt.Errorf("create NATS event bus: %w", err)
		}
		s.DeferClose(bus.Close)
		return bus, nil

	default:
		return events.NewBus(), nil
	}
}

func (s *Server) initStorage() (media.Storage, error) {
	if s.cfg.S3Bucket != "" {
		store, err := media.NewS3Storage(context.Background(), media.S3Config{
			AccessKeyID:     s.cfg.S3AccessKeyID,
			SecretAccessKey: s.cfg.S3SecretAccessKey,
			Region:          s.cfg.S3Region,
			Bucket:          s.cfg.S3Bucket,
			Endpoint:        s.cfg.S3Endpoint,
			PublicBaseURL:   s.cfg.S3PublicBaseURL,
			UsePathStyle:    s.cfg.S3UsePathStyle,
		}, s.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize S3 media storage: %w", err)
		}
		return store, nil
	}

	if err := os.MkdirAll(s.cfg.MediaRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory %s: %w", s.cfg.MediaRoot, err)
	}
	s.logger.Info().Str("path", s.cfg.MediaRoot).Msg("media directory ready")
	return media.NewFilesystemStorage(s.cfg.MediaRoot, s.cfg.BaseURL, s.logger), nil
}

func (s *Server) configureRoutes() {
	s.api.Routes(s.router)

	// Evidence media is only served from this process when stored on the
	// local filesystem; S3 objects are fetched straight from the bucket.
	if _, ok := s.storage.(*media.FilesystemStorage); ok {
		fileServer := http.FileServer(http.Dir(s.cfg.MediaRoot))
		s.router.Handle("/media/*", http.StripPrefix("/media/", fileServer))
	}
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.refresher.Run(ctx)
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.auditSvc.Listen(ctx, s.broker)
	}()
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer builds the Prometheus scrape endpoint, served on its own
// listener so /metrics never rides the public bind.
func (s *Server) MetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	return &http.Server{
		Addr:              s.cfg.MetricsBind,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

// Router exposes the configured chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
