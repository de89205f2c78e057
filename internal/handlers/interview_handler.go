package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ai-recruiter/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
	maxFileSize      int64
}

func NewInterviewHandler(interviewService services.InterviewService, maxFileSize int64) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
		maxFileSize:      maxFileSize,
	}
}

func (h *InterviewHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/interviews/:id/start", h.HandleStartInterview)
	api.Post("/interviews/:id/answer", h.HandleSendAnswer)
	api.Get("/interviews/:id", h.HandleGetInterviewDetails)
	api.Get("/vacancies/:id/interviews", h.HandleListInterviews)
}

func (h *InterviewHandler) HandleStartInterview(c *fiber.Ctx) error {
	interviewID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.interviewService.StartInterview(c.Context(), interviewID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// HandleSendAnswer accepts a multipart form with an "audio" file and a
// "question_id" field.
func (h *InterviewHandler) HandleSendAnswer(c *fiber.Ctx) error {
	interviewID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	questionID, err := strconv.ParseUint(c.FormValue("question_id"), 10, 64)
	if err != nil || questionID == 0 {
		return badRequest(c, "invalid question_id field")
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "audio file is required")
	}
	if fileHeader.Size > h.maxFileSize {
		return badRequest(c, "audio file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to open audio file")
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.interviewService.SendAnswer(c.Context(), interviewID, uint(questionID), audio, fileHeader.Filename)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *InterviewHandler) HandleGetInterviewDetails(c *fiber.Ctx) error {
	interviewID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	details, err := h.interviewService.GetInterviewDetails(interviewID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(details)
}

func (h *InterviewHandler) HandleListInterviews(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	interviews, err := h.interviewService.GetAllInterviews(vacancyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"interviews": interviews})
}
