package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/auth"
	"github.com/octobees/leads-dashboard/internal/config"
	"github.com/octobees/leads-dashboard/internal/handler"
	middlewarepkg "github.com/octobees/leads-dashboard/internal/middleware"
	"github.com/octobees/leads-dashboard/internal/service"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Leads       *handler.LeadsHandler
	Scrape      *handler.ScrapeHandler
	Enrich      *handler.EnrichHandler
	Companies   *handler.CompaniesHandler
	AdminUpload *handler.AdminUploadHandler
	Email       *handler.EmailHandler
	Analytics   *handler.AnalyticsHandler
}

// Register wires all HTTP routes for the API. Reads are always public; when
// auth is enabled, mutating routes need a bearer token and destructive or
// bulk routes need the admin role.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.POST("/auth/login", handlers.Auth.Login)

	var secured, admin []echo.MiddlewareFunc
	if cfg.AuthEnabled {
		secured = []echo.MiddlewareFunc{middlewarepkg.JWT(jwtManager)}
		admin = append(secured, middlewarepkg.RequireRole(service.RoleAdmin))
	}
	scrape := append(secured, middlewarepkg.ScrapeRateLimiter(cfg.RateLimitScrape))

	leads := e.Group("/leads")
	leads.GET("", handlers.Leads.List)
	leads.POST("", handlers.Leads.Create, secured...)
	leads.GET("/export/csv", handlers.Leads.ExportCSV)
	leads.GET("/export/xlsx", handlers.Leads.ExportXLSX)
	leads.POST("/scrape", handlers.Scrape.Scrape, scrape...)
	leads.GET("/:id", handlers.Leads.Get)
	leads.PATCH("/:id", handlers.Leads.Update, secured...)
	leads.DELETE("/:id", handlers.Leads.Delete, admin...)
	leads.POST("/:id/score", handlers.Leads.Score, secured...)
	leads.POST("/:id/enrich", handlers.Enrich.Enrich, secured...)
	leads.GET("/:id/enrichments", handlers.Enrich.History)
	leads.POST("/:id/email/generate", handlers.Email.Generate, secured...)
	leads.GET("/:id/email/campaigns", handlers.Email.LeadCampaigns)

	email := e.Group("/email")
	email.GET("/templates", handlers.Email.Templates)
	email.POST("/campaigns", handlers.Email.CreateCampaign, secured...)
	email.POST("/campaigns/:id/send", handlers.Email.SendCampaign, secured...)

	e.GET("/analytics/stats", handlers.Analytics.Stats)
	e.GET("/analytics/chart", handlers.Analytics.Chart)
	e.GET("/data-sources", handlers.Analytics.DataSources)

	companies := e.Group("/companies")
	companies.GET("", handlers.Companies.List)
	companies.POST("", handlers.Companies.Create, secured...)
	companies.GET("/:id", handlers.Companies.Get)
	companies.PATCH("/:id", handlers.Companies.Update, secured...)
	companies.GET("/:id/contacts", handlers.Companies.Contacts)

	e.POST("/contacts", handlers.Companies.CreateContact, secured...)
	e.PATCH("/contacts/:id", handlers.Companies.UpdateContact, secured...)

	e.POST("/admin/leads/import", handlers.AdminUpload.UploadCSV, admin...)
}
