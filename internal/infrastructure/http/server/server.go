package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	httpdocumento "oficri/mesapartes/internal/adapters/http/documento"
	httphealth "oficri/mesapartes/internal/adapters/http/health"
	httpoficio "oficri/mesapartes/internal/adapters/http/oficio"
	httpprocedimiento "oficri/mesapartes/internal/adapters/http/procedimiento"
	httpreferencia "oficri/mesapartes/internal/adapters/http/referencia"
	httpusuario "oficri/mesapartes/internal/adapters/http/usuario"
	"oficri/mesapartes/internal/core/usuario"
	"oficri/mesapartes/internal/infrastructure/config"
	"oficri/mesapartes/internal/infrastructure/http/middleware"
)

// Handlers groups the domain handlers mounted on the router.
type Handlers struct {
	Usuario       *httpusuario.Handler
	Oficio        *httpoficio.Handler
	Procedimiento *httpprocedimiento.Handler
	Referencia    *httpreferencia.Handler
	Documento     *httpdocumento.Handler
	Health        *httphealth.Handler
}

// Server is the HTTP front of the mesa de partes service.
type Server struct {
	log        *slog.Logger
	httpServer *http.Server
	auth       *middleware.JWTAuthenticator
	shutdown   time.Duration
}

// New builds the router: public health and login, then the JWT-guarded
// API with rol-gated subtrees matching each dashboard.
func New(cfg config.AppConfig, handlers Handlers, log *slog.Logger) (*Server, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}

	auth, err := middleware.NewJWTAuthenticator(cfg.Auth, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", handlers.Health.Status)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/{rol}/login", handlers.Usuario.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/verify", handlers.Usuario.Verify)
			r.Get("/auth/info", handlers.Usuario.Info)

			// Reception desk: case intake and assignment.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRol(log, usuario.RolMesaDePartes, usuario.RolAdmin))
				r.Get("/oficios/check/{numero}", handlers.Oficio.CheckNumero)
				r.Post("/oficios", handlers.Oficio.Create)
				r.Put("/oficios/{id}", handlers.Oficio.Update)
				r.Post("/oficios/{id}/asignar-perito", handlers.Oficio.AsignarPerito)
				r.Post("/oficios/{id}/archivar", handlers.Oficio.Archivar)
			})

			// Shared case reads.
			r.Get("/oficios", handlers.Oficio.List)
			r.Get("/oficios/{id}", handlers.Oficio.Detalle)
			r.Get("/oficios/{id}/seguimientos", handlers.Oficio.Seguimientos)

			// Perito workflow steps.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRol(log, usuario.RolPerito, usuario.RolAdmin))
				r.Post("/oficios/{id}/derivar", handlers.Oficio.Derivar)
				r.Post("/oficios/{id}/finalizar", handlers.Oficio.Finalizar)
				r.Route("/procedimientos", func(r chi.Router) {
					r.Post("/{id}/extraccion", handlers.Procedimiento.Extraccion)
					r.Post("/{id}/analisis", handlers.Procedimiento.Analisis)
					r.Post("/{id}/consolidacion/asignar", handlers.Procedimiento.AsignarConsolidacion)
					r.Post("/{id}/consolidacion", handlers.Procedimiento.Consolidacion)
					r.Post("/{id}/visto", handlers.Procedimiento.Visto)
					r.Get("/{id}/muestras", handlers.Procedimiento.Muestras)
					r.Put("/muestras/{idMuestra}", handlers.Procedimiento.EditarMuestra)
				})
			})

			// Printable documents. Batch rendering outlives the default
			// write timeout, so it gets its own.
			r.Route("/documentos", func(r chi.Router) {
				r.Get("/cargo/{id}", handlers.Documento.Cargo)
				r.Get("/informe/{id}", handlers.Documento.Informe)
				r.Group(func(r chi.Router) {
					r.Use(middleware.ExtendedTimeout(2 * time.Minute))
					r.Post("/informes/lote", handlers.Documento.Lote)
				})
			})

			// Account management, admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRol(log, usuario.RolAdmin))
				r.Get("/peritos", handlers.Usuario.List(usuario.RolPerito))
				r.Post("/peritos", handlers.Usuario.Register(usuario.RolPerito))
				r.Put("/peritos/{cip}", handlers.Usuario.Update(usuario.RolPerito))
				r.Delete("/peritos/{cip}", handlers.Usuario.Deactivate(usuario.RolPerito))
				r.Get("/mesadepartes", handlers.Usuario.List(usuario.RolMesaDePartes))
				r.Post("/mesadepartes", handlers.Usuario.Register(usuario.RolMesaDePartes))
				r.Put("/mesadepartes/{cip}", handlers.Usuario.Update(usuario.RolMesaDePartes))
				r.Delete("/mesadepartes/{cip}", handlers.Usuario.Deactivate(usuario.RolMesaDePartes))
			})

			// Reference catalogs.
			handlers.Referencia.Rutas(r)
		})
	})

	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:         cfg.HTTP.Address(),
			Handler:      r,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		auth:     auth,
		shutdown: cfg.HTTP.ShutdownTimeout,
	}, nil
}

// Run starts the server and blocks until the context is cancelled, then
// drains in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("http server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	s.auth.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
