// Package httpapi exposes the REST surface: phone/OTP sign-up and sign-in,
// document upload/list/delete, and corpus querying.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dkrylov/medvault/internal/logging"
	sc "github.com/dkrylov/medvault/internal/server/config"
	"github.com/dkrylov/medvault/internal/server/services"
)

type Server struct {
	addr      string
	baseURL   string
	secretKey []byte

	sessionValidity     time.Duration
	uploadTokenValidity time.Duration
	corsOrigin          string

	logger logging.Logger
	users  *services.UserService
	docs   *services.DocumentService
	query  *services.QueryService
}

func NewServer(cfg *sc.Config, logger logging.Logger, users *services.UserService,
	docs *services.DocumentService, query *services.QueryService) *Server {
	return &Server{
		addr:                cfg.EndpointAddr,
		baseURL:             strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:           []byte(cfg.SecretKey),
		sessionValidity:     cfg.SessionValidityDuration,
		uploadTokenValidity: cfg.UploadTokenValidityDuration,
		corsOrigin:          cfg.CORSOrigin,
		logger:              logger,
		users:               users,
		docs:                docs,
		query:               query,
	}
}

// Handler builds the chi router with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	var origins []string
	for _, p := range strings.Split(s.corsOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/users/signUp", s.handleSignUp)
	r.Post("/api/users/signIn", s.handleSignIn)
	r.Post("/api/users/verifyOtp", s.handleVerifyOTP)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/api/doc/generateUploadLink", s.handleGenerateUploadLink)
		r.With(s.withUploadToken).Post("/api/doc/uploadDoc", s.handleUploadDoc)
		r.Get("/api/doc/getAllDocs", s.handleGetAllDocs)
		r.Post("/api/doc/deleteDoc", s.handleDeleteDoc)
		r.Post("/api/doc/userquery", s.handleUserQuery)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
