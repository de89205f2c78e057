package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ai-recruiter/internal/models"
	"ai-recruiter/internal/services"
)

type VacancyHandler struct {
	vacancyService services.VacancyService
}

func NewVacancyHandler(vacancyService services.VacancyService) *VacancyHandler {
	return &VacancyHandler{vacancyService: vacancyService}
}

func (h *VacancyHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/vacancies", h.HandleCreateVacancy)
	api.Get("/vacancies", h.HandleListVacancies)
	api.Get("/vacancies/:id", h.HandleGetVacancy)
	api.Put("/vacancies/:id", h.HandleUpdateVacancy)
	api.Delete("/vacancies/:id", h.HandleDeleteVacancy)

	api.Post("/vacancies/:id/questions", h.HandleCreateQuestion)
	api.Get("/vacancies/:id/questions", h.HandleListQuestions)
	api.Put("/vacancies/:id/questions/:questionId", h.HandleUpdateQuestion)
	api.Delete("/vacancies/:id/questions/:questionId", h.HandleDeleteQuestion)
	api.Post("/vacancies/:id/questions/generate", h.HandleGenerateQuestions)
	api.Post("/vacancies/:id/tags/generate", h.HandleGenerateTags)

	api.Get("/vacancies/:id/interview-weights", h.HandleGetInterviewWeights)
	api.Put("/vacancies/:id/interview-weights", h.HandleUpdateInterviewWeights)
	api.Get("/vacancies/:id/resume-weights", h.HandleGetResumeWeights)
	api.Put("/vacancies/:id/resume-weights", h.HandleUpdateResumeWeights)
}

func (h *VacancyHandler) HandleCreateVacancy(c *fiber.Ctx) error {
	var req models.CreateVacancyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	vacancy, err := h.vacancyService.CreateVacancy(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(vacancy)
}

func (h *VacancyHandler) HandleListVacancies(c *fiber.Ctx) error {
	vacancies, err := h.vacancyService.GetAllVacancies()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"vacancies": vacancies})
}

func (h *VacancyHandler) HandleGetVacancy(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	vacancy, err := h.vacancyService.GetVacancy(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vacancy)
}

func (h *VacancyHandler) HandleUpdateVacancy(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.CreateVacancyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	vacancy, err := h.vacancyService.UpdateVacancy(id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vacancy)
}

func (h *VacancyHandler) HandleDeleteVacancy(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.vacancyService.DeleteVacancy(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "vacancy deleted"})
}

func (h *VacancyHandler) HandleCreateQuestion(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	question, err := h.vacancyService.CreateQuestion(vacancyID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func (h *VacancyHandler) HandleListQuestions(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	questions, err := h.vacancyService.GetQuestions(vacancyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"questions": questions})
}

func (h *VacancyHandler) HandleUpdateQuestion(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	questionID, err := parseIDParam(c, "questionId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	question, err := h.vacancyService.UpdateQuestion(vacancyID, questionID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(question)
}

func (h *VacancyHandler) HandleDeleteQuestion(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	questionID, err := parseIDParam(c, "questionId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.vacancyService.DeleteQuestion(vacancyID, questionID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "question deleted"})
}

func (h *VacancyHandler) HandleGenerateQuestions(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.GenerateQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Count == 0 {
		req.Count = 5
	}

	questions, err := h.vacancyService.GenerateQuestions(c.Context(), vacancyID, req.Count)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"questions": questions})
}

func (h *VacancyHandler) HandleGenerateTags(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	vacancy, err := h.vacancyService.GenerateTags(c.Context(), vacancyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vacancy)
}

func (h *VacancyHandler) HandleGetInterviewWeights(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	weights, err := h.vacancyService.GetInterviewWeights(vacancyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(weights)
}

func (h *VacancyHandler) HandleUpdateInterviewWeights(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.InterviewWeights
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	weights, err := h.vacancyService.UpdateInterviewWeights(vacancyID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(weights)
}

func (h *VacancyHandler) HandleGetResumeWeights(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	weights, err := h.vacancyService.GetResumeWeights(vacancyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(weights)
}

func (h *VacancyHandler) HandleUpdateResumeWeights(c *fiber.Ctx) error {
	vacancyID, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.ResumeWeights
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	weights, err := h.vacancyService.UpdateResumeWeights(vacancyID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(weights)
}
