package dto

import "github.com/pmolab/gpd-api/internal/models"

// CreateDemandRequest payload for registering a new demand.
type CreateDemandRequest struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
}

// DemandQuery mirrors supported listing filters.
type DemandQuery struct {
	Status         []models.DemandStatus
	OrganizationID string
	CreatedBy      string
	Search         string
	Page           int
	PageSize       int
}
