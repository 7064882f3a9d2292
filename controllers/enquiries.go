package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
	"github.com/Loxfxgc/lost-and-found-children-reporting/repository"
)

// EnquiryController serves the /api/enquiries surface.
type EnquiryController struct {
	repo *repository.EnquiryRepo
}

func NewEnquiryController(repo *repository.EnquiryRepo) *EnquiryController {
	return &EnquiryController{repo: repo}
}

// EnquiryInput is the JSON body for POST /api/enquiries.
type EnquiryInput struct {
	ReportID string `json:"reportId"`

	EnquirerUID   string `json:"enquirerUid"`
	EnquirerName  string `json:"enquirerName"`
	EnquirerPhone string `json:"enquirerPhone"`
	EnquirerEmail string `json:"enquirerEmail"`

	Message string                  `json:"message"`
	Images  []models.PhotoReference `json:"images"`

	LastSeenLocation string     `json:"lastSeenLocation"`
	LastSeenDate     *time.Time `json:"lastSeenDate"`
	SightingDetails  string     `json:"sightingDetails"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RespondInput is the JSON body for POST /api/enquiries/:id/respond.
type RespondInput struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

func (ct *EnquiryController) Create(c *fiber.Ctx) error {
	var in EnquiryInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	enq := &models.Enquiry{
		EnquirerUID:      in.EnquirerUID,
		EnquirerName:     in.EnquirerName,
		EnquirerPhone:    in.EnquirerPhone,
		EnquirerEmail:    in.EnquirerEmail,
		Message:          in.Message,
		Images:           in.Images,
		LastSeenLocation: in.LastSeenLocation,
		LastSeenDate:     in.LastSeenDate,
		SightingDetails:  in.SightingDetails,
		Location:         models.NewGeoPoint(in.Longitude, in.Latitude),
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	created, err := ct.repo.Create(ctx, in.ReportID, enq)
	if err != nil {
		return fail(c, "Error creating enquiry", err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.MutationResponse{
		Success: true,
		Data:    created,
		Message: "Enquiry created successfully",
	})
}

func (ct *EnquiryController) List(c *fiber.Ctx) error {
	return ct.list(c, repository.EnquiryFilter{Status: c.Query("status")})
}

func (ct *EnquiryController) ByReport(c *fiber.Ctx) error {
	return ct.list(c, repository.EnquiryFilter{ReportID: c.Params("reportId")})
}

func (ct *EnquiryController) ByUser(c *fiber.Ctx) error {
	return ct.list(c, repository.EnquiryFilter{EnquirerUID: c.Params("uid")})
}

func (ct *EnquiryController) list(c *fiber.Ctx, filter repository.EnquiryFilter) error {
	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	items, total, pages, err := ct.repo.List(ctx, filter, page, limit)
	if err != nil {
		return fail(c, "Error fetching enquiries", err)
	}
	return c.JSON(listBody(items, len(items), total, pages, page))
}

func (ct *EnquiryController) Get(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	enq, err := ct.repo.GetByID(ctx, c.Params("id"))
	if err != nil {
		return fail(c, "Enquiry not found", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Data: enq, Message: "Enquiry retrieved successfully"})
}

func (ct *EnquiryController) Update(c *fiber.Ctx) error {
	var patch repository.EnquiryPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	enq, err := ct.repo.Update(ctx, c.Params("id"), patch)
	if err != nil {
		return fail(c, "Error updating enquiry", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Data: enq, Message: "Enquiry updated successfully"})
}

func (ct *EnquiryController) Respond(c *fiber.Ctx) error {
	var in RespondInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	enq, err := ct.repo.Respond(ctx, c.Params("id"), in.Response, in.Status)
	if err != nil {
		return fail(c, "Error responding to enquiry", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Data: enq, Message: "Response recorded successfully"})
}

func (ct *EnquiryController) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()
	if err := ct.repo.Delete(ctx, c.Params("id")); err != nil {
		return fail(c, "Error deleting enquiry", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Message: "Enquiry deleted successfully"})
}
