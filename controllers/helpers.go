package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
	"github.com/Loxfxgc/lost-and-found-children-reporting/repository"
	"github.com/Loxfxgc/lost-and-found-children-reporting/storage"
)

func badRequest(c *fiber.Ctx, msg string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(errBody(msg, err))
}

func notFound(c *fiber.Ctx, msg string, err error) error {
	return c.Status(fiber.StatusNotFound).JSON(errBody(msg, err))
}

func serverErr(c *fiber.Ctx, msg string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errBody(msg, err))
}

func errBody(msg string, err error) models.ErrorResponse {
	body := models.ErrorResponse{Success: false, Message: msg}
	if err != nil {
		body.Error = err.Error()
	}
	return body
}

// fail maps an error to the response taxonomy: 400 validation, 404 not
// found, 500 everything else.
func fail(c *fiber.Ctx, msg string, err error) error {
	switch {
	case repository.IsValidation(err) || errors.Is(err, storage.ErrValidation):
		return badRequest(c, msg, err)
	case errors.Is(err, repository.ErrNotFound) || errors.Is(err, storage.ErrNotFound):
		return notFound(c, msg, err)
	default:
		return serverErr(c, msg, err)
	}
}

// pageParams reads ?page= and ?limit= with the usual defaults.
func pageParams(c *fiber.Ctx) (int, int) {
	page := 1
	limit := 10
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

func listBody(data any, count int, total int64, pages, page int) models.ListResponse {
	return models.ListResponse{
		Success:      true,
		Count:        count,
		TotalPages:   pages,
		CurrentPage:  page,
		TotalRecords: total,
		Data:         data,
	}
}
