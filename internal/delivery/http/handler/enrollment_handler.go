package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/usecase"
	"health-program-api/pkg/response"
	"health-program-api/pkg/validator"

	"github.com/google/uuid"
)

type EnrollmentHandler struct {
	enrollmentUsecase usecase.EnrollmentUsecase
	validator         *validator.CustomValidator
}

func NewEnrollmentHandler(enrollmentUsecase usecase.EnrollmentUsecase, validator *validator.CustomValidator) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentUsecase: enrollmentUsecase,
		validator:         validator,
	}
}

// List supports the client_id, program_id and is_active filters.
func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := parsePagination(r)
	params := dto.EnrollmentListParams{Page: page, Limit: limit}

	if raw := query.Get("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			response.FieldError(w, "client_id", "client_id must be a valid UUID")
			return
		}
		params.ClientID = &clientID
	}

	programID, err := queryInt64(r, "program_id")
	if err != nil {
		response.FieldError(w, "program_id", "program_id must be a number")
		return
	}
	params.ProgramID = programID

	if raw := query.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.FieldError(w, "is_active", "is_active must be true or false")
			return
		}
		params.IsActive = &active
	}

	enrollments, total, err := h.enrollmentUsecase.List(r.Context(), params)
	if err != nil {
		response.InternalServerError(w, "Failed to get enrollments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Enrollments retrieved successfully", enrollments, response.NewMeta(page, limit, total))
}

func (h *EnrollmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid enrollment ID", nil)
		return
	}

	enrollment, err := h.enrollmentUsecase.Get(r.Context(), enrollmentID)
	if err != nil {
		if err == usecase.ErrEnrollmentNotFound {
			response.NotFound(w, "Enrollment not found")
			return
		}
		response.InternalServerError(w, "Failed to get enrollment")
		return
	}

	response.Success(w, http.StatusOK, "Enrollment retrieved successfully", enrollment)
}

// Create reports unknown clients and programs against the request fields.
func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.CreateEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	enrollment, err := h.enrollmentUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		switch err {
		case usecase.ErrClientNotFound:
			response.FieldError(w, "client_id", "Client not found")
		case usecase.ErrProgramNotFound:
			response.FieldError(w, "program_id", "Health program not found")
		case usecase.ErrAlreadyEnrolled:
			response.BadRequest(w, "Client is already enrolled in this program")
		default:
			response.InternalServerError(w, "Failed to create enrollment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Enrollment created successfully", enrollment)
}

func (h *EnrollmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	enrollmentID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid enrollment ID", nil)
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	enrollment, err := h.enrollmentUsecase.Update(r.Context(), actor, enrollmentID, &req)
	if err != nil {
		if err == usecase.ErrEnrollmentNotFound {
			response.NotFound(w, "Enrollment not found")
			return
		}
		response.InternalServerError(w, "Failed to update enrollment")
		return
	}

	response.Success(w, http.StatusOK, "Enrollment updated successfully", enrollment)
}

func (h *EnrollmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	enrollmentID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid enrollment ID", nil)
		return
	}

	if err := h.enrollmentUsecase.Delete(r.Context(), actor, enrollmentID); err != nil {
		if err == usecase.ErrEnrollmentNotFound {
			response.NotFound(w, "Enrollment not found")
			return
		}
		response.InternalServerError(w, "Failed to delete enrollment")
		return
	}

	response.NoContent(w)
}

func (h *EnrollmentHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	enrollmentID, err := pathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid enrollment ID", nil)
		return
	}

	enrollment, err := h.enrollmentUsecase.ToggleActive(r.Context(), actor, enrollmentID)
	if err != nil {
		if err == usecase.ErrEnrollmentNotFound {
			response.NotFound(w, "Enrollment not found")
			return
		}
		response.InternalServerError(w, "Failed to toggle enrollment")
		return
	}

	response.Success(w, http.StatusOK, "Enrollment status updated successfully", enrollment)
}
