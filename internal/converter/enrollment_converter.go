package converter

import (
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
)

func EnrollmentToResponse(enrollment *entity.Enrollment) *dto.EnrollmentResponse {
	if enrollment == nil {
		return nil
	}

	resp := &dto.EnrollmentResponse{
		ID:                 enrollment.ID,
		ClientID:           enrollment.ClientID,
		ProgramID:          enrollment.ProgramID,
		ProgramName:        enrollment.Program.Name,
		ProgramCode:        enrollment.Program.Code,
		EnrollmentDate:     enrollment.EnrollmentDate.Format(dateLayout),
		IsActive:           enrollment.IsActive,
		Notes:              enrollment.Notes,
		EnrolledBy:         enrollment.EnrolledByID,
		EnrolledByUsername: usernameOf(enrollment.EnrolledBy),
		CreatedAt:          enrollment.CreatedAt,
		UpdatedAt:          enrollment.UpdatedAt,
	}
	if enrollment.Client.ID == enrollment.ClientID {
		resp.ClientName = enrollment.Client.FullName()
	}
	return resp
}

func EnrollmentsToResponses(enrollments []entity.Enrollment) []dto.EnrollmentResponse {
	responses := make([]dto.EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		responses[i] = *EnrollmentToResponse(&enrollments[i])
	}
	return responses
}
