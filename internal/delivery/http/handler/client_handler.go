package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/usecase"
	"health-program-api/pkg/response"
	"health-program-api/pkg/validator"
)

type ClientHandler struct {
	clientUsecase usecase.ClientUsecase
	validator     *validator.CustomValidator
}

func NewClientHandler(clientUsecase usecase.ClientUsecase, validator *validator.CustomValidator) *ClientHandler {
	return &ClientHandler{
		clientUsecase: clientUsecase,
		validator:     validator,
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	programID, err := queryInt64(r, "program_id")
	if err != nil {
		response.FieldError(w, "program_id", "program_id must be a number")
		return
	}

	page, limit := parsePagination(r)
	params := dto.ClientListParams{
		Search:    r.URL.Query().Get("search"),
		ProgramID: programID,
		Ordering:  r.URL.Query().Get("ordering"),
		Page:      page,
		Limit:     limit,
	}

	clients, total, err := h.clientUsecase.List(r.Context(), params)
	if err != nil {
		response.InternalServerError(w, "Failed to get clients")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Clients retrieved successfully", clients, response.NewMeta(page, limit, total))
}

// Search matches clients by free text, optionally limited to active members
// of one program. Pagination comes from the query string.
func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.ClientSearchRequest
	// an empty body searches everything
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	page, limit := parsePagination(r)
	clients, total, err := h.clientUsecase.Search(r.Context(), &req, page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to search clients")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Clients retrieved successfully", clients, response.NewMeta(page, limit, total))
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeDetail(w, r, "Client retrieved successfully")
}

func (h *ClientHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.writeDetail(w, r, "Client profile retrieved successfully")
}

func (h *ClientHandler) writeDetail(w http.ResponseWriter, r *http.Request, message string) {
	clientID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	client, err := h.clientUsecase.Get(r.Context(), clientID)
	if err != nil {
		if err == usecase.ErrClientNotFound {
			response.NotFound(w, "Client not found")
			return
		}
		response.InternalServerError(w, "Failed to get client")
		return
	}

	response.Success(w, http.StatusOK, message, client)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	client, err := h.clientUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		if !writeClientFieldError(w, err) {
			response.InternalServerError(w, "Failed to register client")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Client registered successfully", client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	clientID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	var req dto.ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	client, err := h.clientUsecase.Update(r.Context(), actor, clientID, &req)
	if err != nil {
		if err == usecase.ErrClientNotFound {
			response.NotFound(w, "Client not found")
			return
		}
		if !writeClientFieldError(w, err) {
			response.InternalServerError(w, "Failed to update client")
		}
		return
	}

	response.Success(w, http.StatusOK, "Client updated successfully", client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	clientID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	if err := h.clientUsecase.Delete(r.Context(), actor, clientID); err != nil {
		if err == usecase.ErrClientNotFound {
			response.NotFound(w, "Client not found")
			return
		}
		response.InternalServerError(w, "Failed to delete client")
		return
	}

	response.NoContent(w)
}

// Enroll adds the client in the path to a program.
func (h *ClientHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	clientID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid client ID", nil)
		return
	}

	var req dto.EnrollClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	enrollment, err := h.clientUsecase.Enroll(r.Context(), actor, clientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrClientNotFound:
			response.NotFound(w, "Client not found")
		case usecase.ErrProgramNotFound:
			response.FieldError(w, "program_id", "Health program not found")
		case usecase.ErrAlreadyEnrolled:
			response.BadRequest(w, "Client is already enrolled in this program")
		default:
			response.InternalServerError(w, "Failed to enroll client")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Client enrolled successfully", enrollment)
}

func writeClientFieldError(w http.ResponseWriter, err error) bool {
	switch err {
	case usecase.ErrClientEmailExists:
		response.FieldError(w, "email", "Client with this email already exists")
	case usecase.ErrNationalIDExists:
		response.FieldError(w, "national_id", "Client with this national ID already exists")
	case usecase.ErrInvalidDateOfBirth:
		response.FieldError(w, "date_of_birth", "Date of birth must be a past date in format YYYY-MM-DD")
	default:
		return false
	}
	return true
}
