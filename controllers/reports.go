package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
	"github.com/Loxfxgc/lost-and-found-children-reporting/repository"
	"github.com/Loxfxgc/lost-and-found-children-reporting/storage"
)

const dbTimeout = 8 * time.Second

// ReportController serves the /api/reports surface.
type ReportController struct {
	repo     *repository.ReportRepo
	resolver *storage.Resolver
}

func NewReportController(repo *repository.ReportRepo, resolver *storage.Resolver) *ReportController {
	return &ReportController{repo: repo, resolver: resolver}
}

// ReportInput is the JSON body for POST /api/reports.
type ReportInput struct {
	ReporterUID string `json:"reporterUid"`

	ChildName        string     `json:"childName"`
	ChildAge         int        `json:"childAge"`
	ChildGender      string     `json:"childGender"`
	LastSeenDate     *time.Time `json:"lastSeenDate"`
	LastSeenLocation string     `json:"lastSeenLocation"`
	Description      string     `json:"description"`

	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	ContactEmail string `json:"contactEmail"`

	AdditionalDetails   string `json:"additionalDetails"`
	IdentifyingFeatures string `json:"identifyingFeatures"`

	Photo *models.PhotoReference `json:"photo"`
	// Accepted for clients that upload first and send back the raw handle.
	PhotoURL string `json:"photoUrl"`
	PhotoID  string `json:"photoId"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (ct *ReportController) Create(c *fiber.Ctx) error {
	var in ReportInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	rep := &models.Report{
		ReporterUID:         in.ReporterUID,
		ChildName:           in.ChildName,
		ChildAge:            in.ChildAge,
		ChildGender:         in.ChildGender,
		LastSeenLocation:    in.LastSeenLocation,
		Description:         in.Description,
		ContactName:         in.ContactName,
		ContactPhone:        in.ContactPhone,
		ContactEmail:        in.ContactEmail,
		AdditionalDetails:   in.AdditionalDetails,
		IdentifyingFeatures: in.IdentifyingFeatures,
		Photo:               in.Photo,
		PhotoURL:            in.PhotoURL,
		PhotoID:             in.PhotoID,
		Location:            models.NewGeoPoint(in.Longitude, in.Latitude),
	}
	if in.LastSeenDate != nil {
		rep.LastSeenDate = *in.LastSeenDate
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	created, err := ct.repo.Create(ctx, rep)
	if err != nil {
		return fail(c, "Error creating report", err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.MutationResponse{
		Success: true,
		Data:    created,
		Message: "Report created successfully",
	})
}

func (ct *ReportController) List(c *fiber.Ctx) error {
	return ct.list(c, repository.ReportFilter{})
}

func (ct *ReportController) ByStatus(c *fiber.Ctx) error {
	return ct.list(c, repository.ReportFilter{Status: c.Params("status")})
}

func (ct *ReportController) ByUser(c *fiber.Ctx) error {
	return ct.list(c, repository.ReportFilter{ReporterUID: c.Params("uid")})
}

func (ct *ReportController) list(c *fiber.Ctx, filter repository.ReportFilter) error {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	items, total, pages, err := ct.repo.List(ctx, filter, page, limit)
	if err != nil {
		return fail(c, "Error fetching reports", err)
	}
	return c.JSON(listBody(items, len(items), total, pages, page))
}

func (ct *ReportController) Get(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	rep, err := ct.repo.GetByID(ctx, c.Params("id"))
	if err != nil {
		return fail(c, "Report not found", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Data: rep, Message: "Report retrieved successfully"})
}

// SearchByLocation handles GET /api/reports/search/location. Longitude and
// latitude are required; radius is in kilometers and defaults to 10.
func (ct *ReportController) SearchByLocation(c *fiber.Ctx) error {
	lngStr := c.Query("longitude")
	latStr := c.Query("latitude")
	if lngStr == "" || latStr == "" {
		return badRequest(c, "Longitude and latitude are required", nil)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return badRequest(c, "Invalid longitude", err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return badRequest(c, "Invalid latitude", err)
	}
	radius := 10.0
	if v := c.Query("radius"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			radius = r
		}
	}
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	items, total, pages, err := ct.repo.SearchByLocation(ctx, lng, lat, radius, page, limit)
	if err != nil {
		return fail(c, "Error searching reports", err)
	}
	return c.JSON(listBody(items, len(items), total, pages, page))
}

func (ct *ReportController) Update(c *fiber.Ctx) error {
	var patch repository.ReportPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	rep, err := ct.repo.Update(ctx, c.Params("id"), patch)
	if err != nil {
		return fail(c, "Error updating report", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Data: rep, Message: "Report updated successfully"})
}

func (ct *ReportController) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	if err := ct.repo.Delete(ctx, c.Params("id")); err != nil {
		return fail(c, "Error deleting report", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Message: "Report deleted successfully"})
}
