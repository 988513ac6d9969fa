package converter

import (
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func ClientToResponse(client *entity.Client) *dto.ClientResponse {
	if client == nil {
		return nil
	}

	return &dto.ClientResponse{
		ID:                   client.ID,
		FirstName:            client.FirstName,
		LastName:             client.LastName,
		FullName:             client.FullName(),
		DateOfBirth:          client.DateOfBirth.Format(dateLayout),
		Gender:               client.Gender,
		Email:                client.Email,
		PhoneNumber:          client.PhoneNumber,
		Address:              client.Address,
		NationalID:           client.NationalID,
		BloodType:            client.BloodType,
		Allergies:            client.Allergies,
		ChronicConditions:    client.ChronicConditions,
		RegisteredBy:         client.RegisteredByID,
		RegisteredByUsername: usernameOf(client.RegisteredBy),
		RegisteredAt:         client.RegisteredAt,
		UpdatedAt:            client.UpdatedAt,
	}
}

func ClientsToResponses(clients []entity.Client) []dto.ClientResponse {
	responses := make([]dto.ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *ClientToResponse(&clients[i])
	}
	return responses
}

// ClientToDetailResponse includes the client's enrollments. The client name is
// filled in on each enrollment since the enrollment's Client is not preloaded.
func ClientToDetailResponse(client *entity.Client) *dto.ClientDetailResponse {
	if client == nil {
		return nil
	}

	enrollments := EnrollmentsToResponses(client.Enrollments)
	for i := range enrollments {
		enrollments[i].ClientName = client.FullName()
	}

	return &dto.ClientDetailResponse{
		ClientResponse: *ClientToResponse(client),
		Enrollments:    enrollments,
	}
}

func ClientsWithCountToDashboard(clients []entity.ClientWithCount) []dto.DashboardClient {
	items := make([]dto.DashboardClient, len(clients))
	for i := range clients {
		c := &clients[i]
		items[i] = dto.DashboardClient{
			ID:              c.ID,
			FullName:        c.FullName(),
			Email:           c.Email,
			RegisteredAt:    c.RegisteredAt,
			EnrollmentCount: c.EnrollmentCount,
		}
	}
	return items
}
