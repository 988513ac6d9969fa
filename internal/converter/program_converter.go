package converter

import (
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
)

func ProgramToResponse(program *entity.HealthProgram) *dto.ProgramResponse {
	if program == nil {
		return nil
	}

	return &dto.ProgramResponse{
		ID:                program.ID,
		Name:              program.Name,
		Code:              program.Code,
		Description:       program.Description,
		CreatedBy:         program.CreatedByID,
		CreatedByUsername: usernameOf(program.CreatedBy),
		CreatedAt:         program.CreatedAt,
		UpdatedAt:         program.UpdatedAt,
	}
}

func ProgramsToResponses(programs []entity.HealthProgram) []dto.ProgramResponse {
	responses := make([]dto.ProgramResponse, len(programs))
	for i := range programs {
		responses[i] = *ProgramToResponse(&programs[i])
	}
	return responses
}

func ProgramsWithCountToDashboard(programs []entity.ProgramWithCount) []dto.DashboardProgram {
	items := make([]dto.DashboardProgram, len(programs))
	for i, p := range programs {
		items[i] = dto.DashboardProgram{
			ID:              p.ID,
			Name:            p.Name,
			Code:            p.Code,
			CreatedAt:       p.CreatedAt,
			EnrollmentCount: p.EnrollmentCount,
		}
	}
	return items
}
