// Package httpserver holds the chi router baseline and the HTTP server
// wrapper shared by service binaries.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	HTTP        *http.Server
	serviceName string
}

type Options struct {
	Addr        string
	ServiceName string
	Router      chi.Router

	// Zero values default to 15s read/write, 60s idle and 1 MiB of headers.
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

func New(opts Options) *Server {
	if opts.Router == nil {
		opts.Router = chi.NewRouter()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.MaxHeaderBytes <= 0 {
		opts.MaxHeaderBytes = 1 << 20
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           opts.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
	return &Server{HTTP: srv, serviceName: opts.ServiceName}
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start(log *zap.Logger) error {
	lis, err := net.Listen("tcp", s.HTTP.Addr)
	if err != nil {
		return err
	}
	return s.Serve(log, lis)
}

func (s *Server) Serve(log *zap.Logger, lis net.Listener) error {
	log.Info("http server starting", zap.String("addr", lis.Addr().String()), zap.String("service", s.serviceName))
	if err := s.HTTP.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
