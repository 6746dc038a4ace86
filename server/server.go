// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ava-labs/reflectvm/api"
)

type Config struct {
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`

	AllowedOrigins []string `yaml:"allowedOrigins"`
}

func NewDefaultConfig() Config {
	return Config{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   5 * time.Second,
		AllowedOrigins:    []string{"*"},
	}
}

// Server routes API handlers behind a CORS filter. The websocket stream
// holds its connection open, so no write timeout is set by default.
type Server struct {
	log             logging.Logger
	shutdownTimeout time.Duration

	router   *mux.Router
	srv      *http.Server
	listener net.Listener
}

func New(log logging.Logger, listener net.Listener, config Config) *Server {
	router := mux.NewRouter()
	handler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(router)

	log.Info("API created",
		zap.Strings("allowedOrigins", config.AllowedOrigins),
	)
	return &Server{
		log:             log,
		shutdownTimeout: config.ShutdownTimeout,
		router:          router,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
		},
		listener: listener,
	}
}

// AddRoute serves [h] at its path.
func (s *Server) AddRoute(h api.Handler) {
	s.log.Info("adding route",
		zap.String("path", h.Path),
	)
	s.router.Handle(h.Path, h.Handler)
}

// Dispatch serves until [Shutdown] is called, then returns nil.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
