package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ai-recruiter/internal/services"
)

type StorageHandler struct {
	storageService services.StorageService
}

func NewStorageHandler(storageService services.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

func (h *StorageHandler) RegisterRoutes(api fiber.Router) {
	api.Get("/files/:fid", h.HandleDownload)
}

// HandleDownload streams a stored file (resume PDF or interview audio) by
// its fid.
func (h *StorageHandler) HandleDownload(c *fiber.Ctx) error {
	fid := c.Params("fid")
	if fid == "" {
		return badRequest(c, "fid parameter is required")
	}

	reader, contentType, err := h.storageService.Download(fid)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	// fasthttp closes the stream after the response is written.
	return c.SendStream(reader)
}
