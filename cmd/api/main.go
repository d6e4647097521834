package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/reference"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/worklist"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/infrastructure/odata"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/infrastructure/postgres"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/infrastructure/scheduler"
	httpRouter "github.com/jhidalgob2/alpayana-maquetado-ui5/internal/interfaces/http"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/config"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	store, err := odata.NewClient(odata.Config{
		BaseURL:      cfg.OData.BaseURL,
		ServicePath:  cfg.OData.ServicePath,
		SAPClient:    cfg.OData.Client,
		User:         cfg.OData.User,
		Password:     cfg.OData.Password,
		CertPath:     cfg.OData.CertPath,
		CertKeyPath:  cfg.OData.CertKeyPath,
		CertPassword: cfg.OData.CertPassword,
		Timeout:      cfg.OData.Timeout,
	}, log.Component("odata"))
	if err != nil {
		log.Fatal().Err(err).Msg("cliente OData")
	}

	// Bitácora de lotes: solo si hay PostgreSQL configurado.
	var audit repository.BatchAuditRepository
	if cfg.DB.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		auditRepo := postgres.NewBatchAuditRepository(pool)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema de bitácora")
		}
		audit = auditRepo
	} else {
		log.Warn().Msg("sin PostgreSQL: la bitácora de lotes queda deshabilitada")
	}

	refs := reference.NewService(store, cfg.Worklist.TaxApprovedLabel, log.Component("reference"))
	refreshCtx, cancelRefresh := context.WithTimeout(ctx, cfg.OData.Timeout)
	if err := refs.Refresh(refreshCtx); err != nil {
		// Se reintenta en el próximo ciclo del planificador o al primer GET.
		log.Warn().Err(err).Msg("carga inicial de listas de referencia")
	}
	cancelRefresh()

	wl := worklist.NewService(store, audit, refs, worklist.Options{
		ConfirmationTTL: cfg.Worklist.ConfirmationTTL,
		IdleTimeout:     cfg.Worklist.ViewIdle,
	}, log.Component("worklist"))

	jobs := scheduler.New(refs, wl, log.Component("scheduler"))
	if err := jobs.Start(cfg.Worklist.ReferenceRefreshCron); err != nil {
		log.Fatal().Err(err).Msg("tareas programadas")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.OData.Timeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(log.Fiber())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Entregas API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Worklist:   wl,
		References: refs,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	jobs.Stop(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}
