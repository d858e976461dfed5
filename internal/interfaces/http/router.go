package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/tribunsys/internal/application/auth"
	"github.com/tu-usuario/tribunsys/internal/application/bulkimport"
	"github.com/tu-usuario/tribunsys/internal/application/reconciliation"
	"github.com/tu-usuario/tribunsys/internal/application/subsidy"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.UseCase
	Engine    *reconciliation.Engine
	Ledger    *subsidy.Ledger
	Pipeline  *bulkimport.Pipeline
	PDF       PDFGenerator
	XML       XMLExporter
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Calificaciones: la escritura exige el módulo calificaciones, la
	// lectura el módulo consultar (la visibilidad fina la decide el motor)
	qualHandler := NewQualificationHandler(deps.Engine)
	quals := protected.Group("/calificaciones")
	quals.Post("/", RequirePermission(entity.ModuleCalificaciones), qualHandler.Create)
	quals.Put("/:id", RequirePermission(entity.ModuleCalificaciones), qualHandler.Update)
	quals.Delete("/:id", RequirePermission(entity.ModuleCalificaciones), qualHandler.Delete)
	quals.Get("/", RequirePermission(entity.ModuleConsultar), qualHandler.List)
	quals.Get("/:id", RequirePermission(entity.ModuleConsultar), qualHandler.GetByID)

	// Subsidios (protegido, módulo subsidios)
	subsidyHandler := NewSubsidyHandler(deps.Ledger)
	subs := protected.Group("/subsidios", RequirePermission(entity.ModuleSubsidios))
	subs.Get("/", subsidyHandler.List)
	subs.Post("/", subsidyHandler.Create)
	subs.Post("/import", subsidyHandler.Import)
	subs.Get("/export", subsidyHandler.Export)
	subs.Get("/:id", subsidyHandler.GetByID)
	subs.Put("/:id", subsidyHandler.Update)
	subs.Delete("/", subsidyHandler.Delete) // ?all=true&confirm=true
	subs.Delete("/:id", subsidyHandler.Delete)

	// Carga masiva (protegido, módulo carga_masiva)
	bulkHandler := NewBulkImportHandler(deps.Pipeline)
	bulk := protected.Group("/carga-masiva", RequirePermission(entity.ModuleCargaMasiva))
	bulk.Post("/", bulkHandler.Import)
	bulk.Post("/validar", bulkHandler.Validate)
	bulk.Get("/plantilla", bulkHandler.Template)

	// Reportes (protegido, módulo reportes)
	reportHandler := NewReportHandler(deps.Engine, deps.PDF, deps.XML)
	reports := protected.Group("/reportes", RequirePermission(entity.ModuleReportes))
	reports.Get("/calificaciones.csv", reportHandler.ExportCSV)
	reports.Get("/calificaciones.xml", reportHandler.ExportXML)
	reports.Get("/calificaciones.pdf", reportHandler.ExportPDF)
}
