package presenter

import (
	authDTO "github.com/johnquangdev/call-insights/internal/adapter/dto/auth"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/internal/usecase/auth"
)

// ToMeResponse describes the caller of /me
func ToMeResponse(p *auth.Principal) *authDTO.MeResponse {
	if p == nil {
		return nil
	}
	resp := &authDTO.MeResponse{
		ID:       p.Subject,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     string(p.Role),
		AuthType: p.AuthType,
	}
	if p.OrganizationID != nil {
		resp.OrganizationID = p.OrganizationID.String()
	}
	if u := p.User; u != nil {
		resp.ID = u.ID.String()
		resp.Email = u.Email
		resp.LastSignInAt = u.LastSignInAt
		if u.Profile != nil {
			resp.FirstName = u.Profile.FirstName
			resp.LastName = u.Profile.LastName
		}
	}
	return resp
}

// ToRegisterResponse converts the registration result
func ToRegisterResponse(out *auth.RegisterOutput) *authDTO.RegisterResponse {
	return &authDTO.RegisterResponse{
		Message:        "Registration successful.",
		UserID:         out.UserID.String(),
		OrganizationID: out.OrganizationID.String(),
		Role:           string(out.Role),
	}
}

// ToOrganizationResponse converts an Organization entity
func ToOrganizationResponse(org *entities.Organization) *authDTO.OrganizationResponse {
	if org == nil {
		return nil
	}
	return &authDTO.OrganizationResponse{
		OrganizationID: org.OrganizationID.String(),
		Name:           org.Name,
		CreatedAt:      org.CreatedAt,
	}
}

// ToSalesRepResponse converts a SalesRep entity
func ToSalesRepResponse(rep *entities.SalesRep) *authDTO.SalesRepResponse {
	if rep == nil {
		return nil
	}
	resp := &authDTO.SalesRepResponse{
		SalesRepID:     rep.SalesRepID,
		OrganizationID: rep.OrganizationID.String(),
		FirstName:      rep.FirstName,
		LastName:       rep.LastName,
		Email:          rep.Email,
		PhoneNumber:    rep.PhoneNumber,
		CreatedAt:      rep.CreatedAt,
	}
	if rep.UserID != nil {
		resp.UserID = rep.UserID.String()
	}
	return resp
}

// ToSalesRepListResponse converts a list of sales reps
func ToSalesRepListResponse(reps []*entities.SalesRep) []*authDTO.SalesRepResponse {
	out := make([]*authDTO.SalesRepResponse, 0, len(reps))
	for _, rep := range reps {
		out = append(out, ToSalesRepResponse(rep))
	}
	return out
}
