package dto

// CreateCompanyRequest is the payload for POST /companies.
type CreateCompanyRequest struct {
	Name        string  `json:"name"`
	Website     *string `json:"website,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Size        string  `json:"size"`
	Revenue     string  `json:"revenue"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	FoundedYear *int    `json:"foundedYear,omitempty"`
	LinkedinURL *string `json:"linkedinUrl,omitempty"`
	TwitterURL  *string `json:"twitterUrl,omitempty"`
	FacebookURL *string `json:"facebookUrl,omitempty"`
}

// CompanyPatch carries a partial company update. Nil fields are left untouched.
type CompanyPatch struct {
	Name        *string `json:"name,omitempty"`
	Website     *string `json:"website,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Size        *string `json:"size,omitempty"`
	Revenue     *string `json:"revenue,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	FoundedYear *int    `json:"foundedYear,omitempty"`
	LinkedinURL *string `json:"linkedinUrl,omitempty"`
	TwitterURL  *string `json:"twitterUrl,omitempty"`
	FacebookURL *string `json:"facebookUrl,omitempty"`
}

// CreateContactRequest is the payload for POST /contacts.
type CreateContactRequest struct {
	CompanyID       int64   `json:"companyId"`
	Name            string  `json:"name"`
	Title           *string `json:"title,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	LinkedinURL     *string `json:"linkedinUrl,omitempty"`
	IsDecisionMaker bool    `json:"isDecisionMaker"`
}

// ContactPatch carries a partial contact update.
type ContactPatch struct {
	Name            *string `json:"name,omitempty"`
	Title           *string `json:"title,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	LinkedinURL     *string `json:"linkedinUrl,omitempty"`
	IsDecisionMaker *bool   `json:"isDecisionMaker,omitempty"`
}
