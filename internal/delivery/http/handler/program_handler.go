package handler

import (
	"encoding/json"
	"net/http"

	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/usecase"
	"health-program-api/pkg/response"
	"health-program-api/pkg/validator"
)

type ProgramHandler struct {
	programUsecase usecase.ProgramUsecase
	validator      *validator.CustomValidator
}

func NewProgramHandler(programUsecase usecase.ProgramUsecase, validator *validator.CustomValidator) *ProgramHandler {
	return &ProgramHandler{
		programUsecase: programUsecase,
		validator:      validator,
	}
}

// List handles listing health programs
// @Summary List health programs
// @Tags Programs
// @Security BearerAuth
// @Produce json
// @Param search query string false "Substring of name, code or description"
// @Param ordering query string false "name, code or created_at, prefix - for descending"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /programs [get]
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	params := dto.ProgramListParams{
		Search:   r.URL.Query().Get("search"),
		Ordering: r.URL.Query().Get("ordering"),
		Page:     page,
		Limit:    limit,
	}

	programs, total, err := h.programUsecase.List(r.Context(), params)
	if err != nil {
		response.InternalServerError(w, "Failed to get health programs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Health programs retrieved successfully", programs, response.NewMeta(page, limit, total))
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	programID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid program ID", nil)
		return
	}

	program, err := h.programUsecase.Get(r.Context(), programID)
	if err != nil {
		if err == usecase.ErrProgramNotFound {
			response.NotFound(w, "Health program not found")
			return
		}
		response.InternalServerError(w, "Failed to get health program")
		return
	}

	response.Success(w, http.StatusOK, "Health program retrieved successfully", program)
}

// Create handles health program creation
// @Summary Create a health program
// @Tags Programs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ProgramRequest true "Program Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /programs [post]
func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	program, err := h.programUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		if !writeProgramConflict(w, err) {
			response.InternalServerError(w, "Failed to create health program")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Health program created successfully", program)
}

func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	programID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid program ID", nil)
		return
	}

	var req dto.ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	program, err := h.programUsecase.Update(r.Context(), actor, programID, &req)
	if err != nil {
		if err == usecase.ErrProgramNotFound {
			response.NotFound(w, "Health program not found")
			return
		}
		if !writeProgramConflict(w, err) {
			response.InternalServerError(w, "Failed to update health program")
		}
		return
	}

	response.Success(w, http.StatusOK, "Health program updated successfully", program)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	programID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid program ID", nil)
		return
	}

	if err := h.programUsecase.Delete(r.Context(), actor, programID); err != nil {
		if err == usecase.ErrProgramNotFound {
			response.NotFound(w, "Health program not found")
			return
		}
		response.InternalServerError(w, "Failed to delete health program")
		return
	}

	response.NoContent(w)
}

func writeProgramConflict(w http.ResponseWriter, err error) bool {
	switch err {
	case usecase.ErrProgramNameExists:
		response.FieldError(w, "name", "Health program with this name already exists")
	case usecase.ErrProgramCodeExists:
		response.FieldError(w, "code", "Health program with this code already exists")
	default:
		return false
	}
	return true
}
