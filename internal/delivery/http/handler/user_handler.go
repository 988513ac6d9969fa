package handler

import (
	"encoding/json"
	"net/http"

	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/usecase"
	"health-program-api/pkg/response"
	"health-program-api/pkg/validator"
)

type UserHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewUserHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *UserHandler {
	return &UserHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// CreateUser registers a staff account. Admin only.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.authUsecase.CreateUser(r.Context(), actor, &req)
	if err != nil {
		switch err {
		case usecase.ErrUsernameExists:
			response.FieldError(w, "username", "A user with that username already exists")
		case usecase.ErrRoleNotFound:
			response.FieldError(w, "role", "Role not found")
		default:
			response.InternalServerError(w, "Failed to create user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}
