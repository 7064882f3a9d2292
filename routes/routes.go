package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Loxfxgc/lost-and-found-children-reporting/controllers"
)

// Register attaches all API endpoints to the app.
func Register(app *fiber.App, reports *controllers.ReportController, enquiries *controllers.EnquiryController, images *controllers.ImageController) {
	api := app.Group("/api")

	// Static segments must be registered before the :id routes.
	api.Post("/reports", reports.Create)
	api.Get("/reports", reports.List)
	api.Get("/reports/search/location", reports.SearchByLocation)
	api.Get("/reports/status/:status", reports.ByStatus)
	api.Get("/reports/user/:uid", reports.ByUser)
	api.Get("/reports/:id", reports.Get)
	api.Put("/reports/:id", reports.Update)
	api.Delete("/reports/:id", reports.Delete)

	api.Post("/enquiries", enquiries.Create)
	api.Get("/enquiries", enquiries.List)
	api.Get("/enquiries/report/:reportId", enquiries.ByReport)
	api.Get("/enquiries/user/:uid", enquiries.ByUser)
	api.Get("/enquiries/:id", enquiries.Get)
	api.Put("/enquiries/:id", enquiries.Update)
	api.Post("/enquiries/:id/respond", enquiries.Respond)
	api.Delete("/enquiries/:id", enquiries.Delete)

	api.Post("/images/upload", images.Upload)
	api.Get("/images/health", images.Health)
	// Wildcard instead of :id — hosted object keys contain slashes.
	api.Get("/images/*", images.Get)
	api.Delete("/images/*", images.Delete)
}
