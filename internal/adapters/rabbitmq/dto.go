package rabbitmq

import (
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// CatalogChangedDTO - событие об изменении живых записей каталога
type CatalogChangedDTO struct {
	Change     string    `json:"change"`
	RecordIDs  []string  `json:"record_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source,omitempty"`
}

// ReconcileRequestedDTO - запрос на запуск сверки договоров
type ReconcileRequestedDTO struct {
	FailFast    bool   `json:"fail_fast"`
	DryRun      bool   `json:"dry_run"`
	RequestedBy string `json:"requested_by,omitempty"`
}

func (d ReconcileRequestedDTO) toOptions() domain.ReconcileOptions {
	return domain.ReconcileOptions{FailFast: d.FailFast, DryRun: d.DryRun}
}

// ContractsReconciledDTO - отчет о запуске сверки
type ContractsReconciledDTO struct {
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	FailFast   bool                  `json:"fail_fast"`
	Totals     map[string]int        `json:"totals"`
	Failures   []domain.RecordResult `json:"failures,omitempty"`
}

func toContractsReconciledDTO(r *domain.ReconcileReport) ContractsReconciledDTO {
	dto := ContractsReconciledDTO{
		RunID:      r.RunID.String(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		FailFast:   r.Options.FailFast,
		Totals: map[string]int{
			"created": r.Created,
			"updated": r.Updated,
			"skipped": r.Skipped,
			"failed":  r.Failed,
		},
	}
	for _, res := range r.Results {
		if res.Outcome == domain.OutcomeFailed {
			dto.Failures = append(dto.Failures, res)
		}
	}
	return dto
}
