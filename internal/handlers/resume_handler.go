package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ai-recruiter/internal/services"
)

type ResumeHandler struct {
	resumeService services.ResumeService
	maxFileSize   int64
}

func NewResumeHandler(resumeService services.ResumeService, maxFileSize int64) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
		maxFileSize:   maxFileSize,
	}
}

func (h *ResumeHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/vacancies/:id/resumes/evaluate", h.HandleEvaluateResumes)
	api.Get("/candidates/search", h.HandleSearchCandidates)
}

// HandleEvaluateResumes accepts a multipart form with one or more PDF files
// under the "resumes" field.
func (h *ResumeHandler) HandleEvaluateResumes(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "failed to parse multipart form")
	}

	fileHeaders := form.File["resumes"]
	if len(fileHeaders) == 0 {
		return badRequest(c, "no resumes uploaded, use the 'resumes' field with PDF files")
	}

	files := make([]services.ResumeFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size > h.maxFileSize {
			return badRequest(c, fmt.Sprintf("file %s too large, max size: %d bytes", fh.Filename, h.maxFileSize))
		}
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return badRequest(c, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		}

		f, err := fh.Open()
		if err != nil {
			return badRequest(c, fmt.Sprintf("failed to open file %s", fh.Filename))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return respondError(c, err)
		}
		files = append(files, services.ResumeFile{Filename: fh.Filename, Data: data})
	}

	resp, err := h.resumeService.EvaluateResumes(c.Context(), vacancyID, files)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// HandleSearchCandidates searches indexed resumes by semantic similarity.
// Query params: q (required), vacancy_id, limit.
func (h *ResumeHandler) HandleSearchCandidates(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return badRequest(c, "query parameter 'q' is required")
	}

	var vacancyID uint
	if raw := c.Query("vacancy_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid vacancy_id parameter")
		}
		vacancyID = uint(id)
	}

	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		return badRequest(c, "limit must be between 1 and 100")
	}

	results, err := h.resumeService.SearchCandidates(c.Context(), query, vacancyID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}
