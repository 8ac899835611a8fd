package models

import "time"

// DemandStatus enumerates the lifecycle states of a demand.
type DemandStatus string

const (
	DemandStatusBacklog              DemandStatus = "BACKLOG"
	DemandStatusAwaitingManager      DemandStatus = "AGUARDANDO_GERENTE"
	DemandStatusAwaitingCommittee    DemandStatus = "AGUARDANDO_COMITE"
	DemandStatusAwaitingITValidation DemandStatus = "AGUARDANDO_VALIDACAO_TI"
	DemandStatusApproved             DemandStatus = "APROVADO"
	DemandStatusRejected             DemandStatus = "RECUSADO"
	DemandStatusInProgress           DemandStatus = "EM_PROGRESSO"
	DemandStatusDone                 DemandStatus = "CONCLUIDO"
	DemandStatusStandBy              DemandStatus = "STANDBY"
	DemandStatusBlocked              DemandStatus = "BLOQUEADO"
	DemandStatusArchived             DemandStatus = "ARQUIVADO"
)

// Terminal reports whether no further approval decision applies.
func (s DemandStatus) Terminal() bool {
	switch s {
	case DemandStatusApproved, DemandStatusRejected, DemandStatusDone, DemandStatusArchived:
		return true
	}
	return false
}

// Demand is the primary unit of work moving through staged approval.
type Demand struct {
	ID             string       `db:"id" json:"id"`
	Code           string       `db:"code" json:"code"`
	Title          string       `db:"title" json:"title"`
	Description    string       `db:"description" json:"description"`
	Status         DemandStatus `db:"status" json:"status"`
	OrganizationID string       `db:"organization_id" json:"organization_id"`
	CreatedBy      string       `db:"created_by" json:"created_by"`
	Version        int          `db:"version" json:"version"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// DemandFilter captures listing criteria for demands.
type DemandFilter struct {
	Status         []DemandStatus
	OrganizationID string
	CreatedBy      string
	Search         string
	Page           int
	PageSize       int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
