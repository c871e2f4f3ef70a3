package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

const dateLayout = "2006-01-02"

// CreateContractRequestDTO - тело POST /contracts
type CreateContractRequestDTO struct {
	Address      string    `json:"address" validate:"required,min=3"`
	Tenant       TenantDTO `json:"tenant"`
	DateStart    string    `json:"date_start" validate:"required,datetime=2006-01-02"`
	DateEnd      string    `json:"date_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Price        float64   `json:"price" validate:"gt=0"`
	Deposit      *float64  `json:"deposit,omitempty" validate:"omitempty,gte=0"`
	PropertyName string    `json:"property_name,omitempty" validate:"max=200"`
	RoomName     string    `json:"room_name,omitempty" validate:"max=200"`
}

type TenantDTO struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

func (d CreateContractRequestDTO) toDomain() (domain.ContractRequest, error) {
	start, err := time.Parse(dateLayout, d.DateStart)
	if err != nil {
		return domain.ContractRequest{}, fmt.Errorf("date_start: %w", err)
	}

	var end *time.Time
	if d.DateEnd != "" {
		e, err := time.Parse(dateLayout, d.DateEnd)
		if err != nil {
			return domain.ContractRequest{}, fmt.Errorf("date_end: %w", err)
		}
		if e.Before(start) {
			return domain.ContractRequest{}, fmt.Errorf("date_end must not be before date_start")
		}
		end = &e
	}

	return domain.ContractRequest{
		Address:      strings.TrimSpace(d.Address),
		TenantName:   d.Tenant.Name,
		TenantEmail:  d.Tenant.Email,
		TenantPhone:  d.Tenant.Phone,
		DateStart:    start,
		DateEnd:      end,
		Price:        d.Price,
		Deposit:      d.Deposit,
		PropertyName: d.PropertyName,
		RoomName:     d.RoomName,
	}, nil
}

// ReconcileRequestDTO - тело POST /contracts/reconcile
type ReconcileRequestDTO struct {
	FailFast bool `json:"fail_fast"`
	DryRun   bool `json:"dry_run"`
}

// CatalogRecordResponse - запись каталога с рассчитанной доходностью
type CatalogRecordResponse struct {
	domain.CatalogRecord
	Yield string `json:"yield"`
}

func toCatalogResponse(records []domain.CatalogRecord) []CatalogRecordResponse {
	out := make([]CatalogRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, CatalogRecordResponse{
			CatalogRecord: rec,
			Yield:         rec.Yield().StringFixed(2),
		})
	}
	return out
}

type CatalogResponse struct {
	Sort    string                  `json:"sort"`
	Total   int                     `json:"total"`
	Records []CatalogRecordResponse `json:"records"`
}

type ContractsResponse struct {
	Total     int                    `json:"total"`
	Contracts []domain.LocalContract `json:"contracts"`
}
