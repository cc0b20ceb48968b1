package entity

import "time"

// Company represents a business a lead belongs to.
type Company struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Website     *string    `json:"website,omitempty"`
	Industry    *string    `json:"industry,omitempty"`
	Size        string     `json:"size"`
	Revenue     string     `json:"revenue"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	FoundedYear *int       `json:"foundedYear,omitempty"`
	LinkedinURL *string    `json:"linkedinUrl,omitempty"`
	TwitterURL  *string    `json:"twitterUrl,omitempty"`
	FacebookURL *string    `json:"facebookUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Contact is a person working at a company.
type Contact struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"companyId"`
	Name            string    `json:"name"`
	Title           *string   `json:"title,omitempty"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	LinkedinURL     *string   `json:"linkedinUrl,omitempty"`
	IsDecisionMaker bool      `json:"isDecisionMaker"`
	CreatedAt       time.Time `json:"createdAt"`
}
