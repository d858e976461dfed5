package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/tribunsys/internal/application/auth"
	"github.com/tu-usuario/tribunsys/internal/application/bulkimport"
	"github.com/tu-usuario/tribunsys/internal/application/reconciliation"
	"github.com/tu-usuario/tribunsys/internal/application/subsidy"
	"github.com/tu-usuario/tribunsys/internal/infrastructure/pdf"
	"github.com/tu-usuario/tribunsys/internal/infrastructure/postgres"
	"github.com/tu-usuario/tribunsys/internal/infrastructure/sqlite"
	"github.com/tu-usuario/tribunsys/internal/infrastructure/xmlreport"
	httpRouter "github.com/tu-usuario/tribunsys/internal/interfaces/http"
	"github.com/tu-usuario/tribunsys/pkg/config"
	"github.com/tu-usuario/tribunsys/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("corredor", cfg.Subsidy.BrokerID).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	qualRepo := postgres.NewQualificationRepository(pool)
	partyRepo := postgres.NewPartyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	mirrorRepo := postgres.NewSubsidyMirror(pool)
	guard := postgres.NewGuard(pool)

	// Catálogo local de subsidios: un archivo sqlite por corredor
	if err := os.MkdirAll(filepath.Dir(cfg.Subsidy.DBPath()), 0o755); err != nil {
		log.Fatal().Err(err).Msg("crear directorio de datos")
	}
	store, err := sqlite.Open(cfg.Subsidy.DBPath())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén local de subsidios")
	}
	defer store.Close()

	ledger := subsidy.NewLedger(store, mirrorRepo, auditRepo, cfg.Subsidy.BrokerID, log)
	engine := reconciliation.NewEngine(qualRepo, partyRepo, ledger, auditRepo, guard, log)
	pipeline := bulkimport.NewPipeline(qualRepo, partyRepo, auditRepo, guard, cfg.Import.MaxBatchSize, log)
	authUC := auth.NewUseCase(userRepo, cfg.JWT, cfg.Subsidy.BrokerID, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024, // planillas CSV de carga masiva
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "TribunSys API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if err := guard.Check(c.Context()); err != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{"status": status, "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Engine:    engine,
		Ledger:    ledger,
		Pipeline:  pipeline,
		PDF:       pdf.NewReportGenerator(),
		XML:       xmlreport.NewExporter(),
		JWTSecret: cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
