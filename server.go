package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/hako/durafmt"
	"github.com/ironstar-io/chizerolog"
	"github.com/rs/zerolog"

	authzapi "github.com/datagrid-security/saml-authz-api/api/authz"
	"github.com/datagrid-security/saml-authz-api/authz"
	"github.com/datagrid-security/saml-authz-api/policy"
)

// APIServer is a struct that bundles together the various server-wide
// resources used at runtime that each have
// a lifecycle of initialization, connection, and disconnection
type APIServer struct {
	policyProvider *policy.Provider
	authzService   *authz.Service
	logger         zerolog.Logger
}

// NewAPIServer initializes the struct and all constituent components
func NewAPIServer(logger zerolog.Logger) (*APIServer, error) {
	// Initialize the static policy decision provider
	policyProvider, err := policy.NewProvider()
	if err != nil {
		return nil, err
	}

	// Initialize the authorization decision service
	authzConfig, err := authz.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	authzService, err := authz.NewService(policyProvider, authzConfig, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("issuer", authzConfig.IssuerValue).
		Str("validity_window", durafmt.Parse(authzService.ValidityWindow()).String()).
		Msg("initialized authorization decision service")

	return &APIServer{
		policyProvider: policyProvider,
		authzService:   authzService,
		logger:         logger,
	}, nil
}

// Connect loads the downstream resources the server depends on
func (a *APIServer) Connect(ctx context.Context) error {
	a.logger.Info().Msg("loading policy decision map")
	err := a.policyProvider.Connect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not load the policy decision map")
		return err
	}
	a.logger.Info().Msg("successfully loaded the policy decision map")

	return nil
}

// Disconnect releases the downstream resources the server depends on
func (a *APIServer) Disconnect(ctx context.Context) error {
	return a.policyProvider.Disconnect(ctx)
}

// Serve runs the main API server until it's cancelled for some reason,
// in which case it attempts to gracefully shutdown.
// This function blocks.
func (a *APIServer) Serve(ctx context.Context, port int) {
	router := a.routes()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("listen failed")
		}
	}()
	a.logger.Info().Int("port", port).Msg("API server started")

	<-ctx.Done()
	a.logger.Info().Msg("API server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Fatal().Err(err).Msg("API server shutdown failed")
	}
	a.logger.Info().Msg("API server exited properly")
}

func (a *APIServer) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.Recoverer,                         // Recover from panics without crashing the server
		chizerolog.LoggerMiddleware(&a.logger),       // Log API request calls
		middleware.RedirectSlashes,                   // Redirect slashes to no slash URL versions
		render.SetContentType(render.ContentTypeXML), // Set content-type headers to text/xml
		middleware.NoCache,                           // Decision responses must not be cached
		a.corsMiddleware(),                           // Create cors middleware from go-chi/cors
	)

	router.Route("/v1", func(r chi.Router) {
		// Can be used for health checks
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(204)
		})

		r.Mount("/authorization-service", authzapi.Routes(a.authzService))
	})

	return router
}

func (a *APIServer) corsMiddleware() func(http.Handler) http.Handler {
	// See if the CORS_ALLOWED_ORIGINS environment variable was set
	allowedOrigins := "*"
	if value, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		allowedOrigins = value
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "SOAPAction"},
		ExposedHeaders:   []string{},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
