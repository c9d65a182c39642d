package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	httpdocumento "oficri/mesapartes/internal/adapters/http/documento"
	httphealth "oficri/mesapartes/internal/adapters/http/health"
	httpoficio "oficri/mesapartes/internal/adapters/http/oficio"
	httpprocedimiento "oficri/mesapartes/internal/adapters/http/procedimiento"
	httpreferencia "oficri/mesapartes/internal/adapters/http/referencia"
	httpusuario "oficri/mesapartes/internal/adapters/http/usuario"
	pgmuestra "oficri/mesapartes/internal/adapters/muestra/postgres"
	smtpnotificacion "oficri/mesapartes/internal/adapters/notificacion/smtp"
	pgoficio "oficri/mesapartes/internal/adapters/oficio/postgres"
	pgreferencia "oficri/mesapartes/internal/adapters/referencia/postgres"
	pgusuario "oficri/mesapartes/internal/adapters/usuario/postgres"
	appdocumento "oficri/mesapartes/internal/application/documento"
	apphealth "oficri/mesapartes/internal/application/health"
	appimagen "oficri/mesapartes/internal/application/imagen"
	appoficio "oficri/mesapartes/internal/application/oficio"
	appprocedimiento "oficri/mesapartes/internal/application/procedimiento"
	appreferencia "oficri/mesapartes/internal/application/referencia"
	appusuario "oficri/mesapartes/internal/application/usuario"
	"oficri/mesapartes/internal/infrastructure/config"
	"oficri/mesapartes/internal/infrastructure/database"
	"oficri/mesapartes/internal/infrastructure/http/server"
	"oficri/mesapartes/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	oficioRepo := pgoficio.NewRepository(pool, log)
	muestraRepo := pgmuestra.NewRepository(pool, log)
	usuarioRepo := pgusuario.NewRepository(pool, log)
	referenciaRepo := pgreferencia.NewRepository(pool, log)

	notificador := smtpnotificacion.NewNotificador(cfg.SMTP, log)

	usuarioSvc := appusuario.NewService(usuarioRepo, cfg.Auth, log)
	if err := usuarioSvc.BootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	oficioSvc := appoficio.NewService(oficioRepo, notificador, log)
	imagenSvc := appimagen.NewService(cfg.Upload, log)
	procedimientoSvc := appprocedimiento.NewService(oficioSvc, muestraRepo, imagenSvc, log)
	referenciaSvc := appreferencia.NewService(referenciaRepo, cfg.Cache, log)
	documentoSvc := appdocumento.NewService(oficioRepo, muestraRepo, cfg.Documentos, log)
	healthSvc := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, pool)

	srv, err := server.New(cfg, server.Handlers{
		Usuario:       httpusuario.NewHandler(usuarioSvc, log),
		Oficio:        httpoficio.NewHandler(oficioSvc, log),
		Procedimiento: httpprocedimiento.NewHandler(procedimientoSvc, log),
		Referencia:    httpreferencia.NewHandler(referenciaSvc, log),
		Documento:     httpdocumento.NewHandler(documentoSvc, log),
		Health:        httphealth.NewHandler(healthSvc),
	}, log)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	return srv.Run(ctx)
}
