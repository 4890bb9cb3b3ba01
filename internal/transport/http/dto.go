package httptransport

import (
	"time"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/workflow"
)

const dateLayout = "2006-01-02"

type citizenResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
	PESEL     string `json:"pesel"`
	Gender    string `json:"gender"`
}

func toCitizenResponse(c identity.Citizen) citizenResponse {
	return citizenResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		BirthDate: c.BirthDate.Format(dateLayout),
		PESEL:     c.PESEL,
		Gender:    string(c.Gender),
	}
}

func toCitizenResponses(citizens []identity.Citizen) []citizenResponse {
	out := make([]citizenResponse, 0, len(citizens))
	for _, c := range citizens {
		out = append(out, toCitizenResponse(c))
	}
	return out
}

type officialResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position"`
}

func toOfficialResponse(o identity.Official) officialResponse {
	return officialResponse{
		ID:        o.ID.String(),
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Position:  o.Position,
	}
}

type documentResponse struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	IssueDate      string   `json:"issueDate"`
	ExpirationDate string   `json:"expirationDate"`
	IssuedBy       string   `json:"issuedBy"`
	Lost           bool     `json:"lost"`
	Citizenship    string   `json:"citizenship,omitempty"`
	Categories     []string `json:"categories,omitempty"`
}

func toDocumentResponse(d document.Document) documentResponse {
	return documentResponse{
		ID:             d.ID.String(),
		Kind:           string(d.Kind),
		IssueDate:      d.IssueDate.Format(dateLayout),
		ExpirationDate: d.ExpirationDate.Format(dateLayout),
		IssuedBy:       d.IssuedBy.String(),
		Lost:           d.Lost,
		Citizenship:    d.Citizenship,
		Categories:     categoryStrings(d.Categories),
	}
}

type issueRequestResponse struct {
	ID          string   `json:"id"`
	CitizenID   string   `json:"citizenId"`
	Kind        string   `json:"kind"`
	Citizenship string   `json:"citizenship,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Processed   bool     `json:"processed"`
	Approved    bool     `json:"approved"`
	RequestDate string   `json:"requestDate"`
}

func toIssueRequestResponse(req workflow.IssueRequest) issueRequestResponse {
	return issueRequestResponse{
		ID:          req.ID.String(),
		CitizenID:   req.CitizenID.String(),
		Kind:        string(req.Kind),
		Citizenship: req.Citizenship,
		Categories:  categoryStrings(req.Categories),
		Processed:   req.Processed,
		Approved:    req.Approved,
		RequestDate: req.RequestDate.Format(time.RFC3339),
	}
}

type dataUpdateRequestResponse struct {
	ID          string  `json:"id"`
	CitizenID   string  `json:"citizenId"`
	FirstName   *string `json:"requestedFirstName,omitempty"`
	LastName    *string `json:"requestedLastName,omitempty"`
	Gender      *string `json:"requestedGender,omitempty"`
	Processed   bool    `json:"processed"`
	Approved    bool    `json:"approved"`
	RequestDate string  `json:"requestDate"`
}

func toDataUpdateRequestResponse(req workflow.DataUpdateRequest) dataUpdateRequestResponse {
	resp := dataUpdateRequestResponse{
		ID:          req.ID.String(),
		CitizenID:   req.CitizenID.String(),
		FirstName:   req.RequestedFirstName,
		LastName:    req.RequestedLastName,
		Processed:   req.Processed,
		Approved:    req.Approved,
		RequestDate: req.RequestDate.Format(time.RFC3339),
	}
	if req.RequestedGender != nil {
		g := string(*req.RequestedGender)
		resp.Gender = &g
	}
	return resp
}

func categoryStrings(categories []document.LicenseCategory) []string {
	if len(categories) == 0 {
		return nil
	}
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func toCategories(raw []string) []document.LicenseCategory {
	out := make([]document.LicenseCategory, 0, len(raw))
	for _, c := range raw {
		out = append(out, document.LicenseCategory(c))
	}
	return out
}
