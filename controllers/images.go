package controllers

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
	"github.com/Loxfxgc/lost-and-found-children-reporting/storage"
)

const uploadTimeout = 30 * time.Second

// ImageController serves the /api/images surface directly against the blob
// gateway. Record-owned photos go through the repositories; this surface is
// for the upload-first flow where the client stores the returned handle on
// the record afterwards.
type ImageController struct {
	blobs    storage.Gateway
	resolver *storage.Resolver
}

func NewImageController(blobs storage.Gateway, resolver *storage.Resolver) *ImageController {
	return &ImageController{blobs: blobs, resolver: resolver}
}

// Upload handles a single-file multipart upload under field "image".
func (ct *ImageController) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "No file uploaded", err)
	}

	src, err := fh.Open()
	if err != nil {
		return serverErr(c, "Error reading uploaded file", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return serverErr(c, "Error reading uploaded file", err)
	}

	mimeType := fh.Header.Get("Content-Type")

	ctx, cancel := context.WithTimeout(c.Context(), uploadTimeout)
	defer cancel()
	ref, err := ct.blobs.Upload(ctx, data, mimeType, fh.Filename)
	if err != nil {
		return fail(c, "Error uploading image", err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Success:  true,
		FileID:   refID(ref),
		URL:      ct.resolver.ResolveURL(ref),
		Filename: fh.Filename,
		Photo:    ref,
		Message:  "Image uploaded successfully",
	})
}

// Get serves an image by id: embedded files are streamed from the database,
// hosted files redirect to their public URL.
func (ct *ImageController) Get(c *fiber.Ctx) error {
	ref := ct.refFromID(imageID(c))

	if ref.Backend == models.BackendHosted {
		if url := ct.resolver.ResolveURL(ref); url != "" {
			return c.Redirect(url, fiber.StatusFound)
		}
		return notFound(c, "Image not found", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), uploadTimeout)
	defer cancel()
	data, contentType, err := ct.blobs.Fetch(ctx, ref)
	if err != nil {
		return fail(c, "Error retrieving image", err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func (ct *ImageController) Delete(c *fiber.Ctx) error {
	ref := ct.refFromID(imageID(c))

	ctx, cancel := context.WithTimeout(c.Context(), uploadTimeout)
	defer cancel()
	if err := ct.blobs.Delete(ctx, ref); err != nil {
		return fail(c, "Error deleting image", err)
	}
	return c.JSON(models.MutationResponse{Success: true, Message: "Image deleted successfully"})
}

// Health reports backend availability. Advisory only: a failing probe never
// blocks uploads.
func (ct *ImageController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	if err := ct.blobs.HealthCheck(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Success: false,
			Message: "Image storage unavailable",
			Error:   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": true, "status": "ok", "backend": ct.blobs.Kind()})
}

// refFromID rebuilds the reference shape the active backend expects from a
// bare id in the URL.
func (ct *ImageController) refFromID(id string) *models.PhotoReference {
	if ct.blobs.Kind() == "s3" {
		return &models.PhotoReference{Backend: models.BackendHosted, PublicID: id}
	}
	return &models.PhotoReference{Backend: models.BackendEmbedded, FileID: id}
}

// imageID reads the id path segment; hosted object keys contain slashes so
// the route is registered with a wildcard.
func imageID(c *fiber.Ctx) string {
	if id := c.Params("*"); id != "" {
		return id
	}
	return c.Params("id")
}

func refID(ref *models.PhotoReference) string {
	if ref.Backend == models.BackendHosted {
		return ref.PublicID
	}
	return ref.FileID
}
