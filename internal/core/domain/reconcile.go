package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoricalCutoffYear - договоры, закончившиеся раньше этого года, не импортируются
const HistoricalCutoffYear = 2024

// Outcome - итог обработки одного договора внешней системы
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// MatchKind - как удаленный договор был сопоставлен с локальным
type MatchKind string

const (
	MatchNone         MatchKind = "none"
	MatchByRemoteID   MatchKind = "remote_id"
	MatchByTenantName MatchKind = "tenant_name"
)

// Причины пропуска
const (
	SkipReasonUpToDate     = "up_to_date"
	SkipReasonNoRemoteEnd  = "no_remote_end_date"
	SkipReasonHistorical   = "historical_contract"
	SkipReasonBatchAborted = "batch_aborted"
	ReasonDryRun           = "dry_run"
)

// ActionKind - что нужно сделать с договором
type ActionKind int

const (
	ActionSkip ActionKind = iota
	ActionCreate
	ActionUpdate
)

// ReconcileAction - решение по одному удаленному договору, принятое по снимку
// локальных договоров на начало запуска
type ReconcileAction struct {
	Kind       ActionKind
	Remote     RemoteContract
	Tenant     TenantIdentity
	Match      MatchKind
	LocalID    string
	Update     LocalContractUpdate
	NewLocal   *LocalContract
	SkipReason string
}

// LockKey - ключ сериализации записи: id локального договора для обновлений,
// нормализованное имя арендатора для созданий
func (a ReconcileAction) LockKey() string {
	switch a.Kind {
	case ActionUpdate:
		return "local:" + a.LocalID
	case ActionCreate:
		return "tenant:" + Normalize(a.Tenant.Name)
	default:
		return ""
	}
}

// RecordResult - результат по одному удаленному договору
type RecordResult struct {
	RemoteID     string    `json:"remote_id"`
	TenantName   string    `json:"tenant_name"`
	TenantSource string    `json:"tenant_source"`
	Outcome      Outcome   `json:"outcome"`
	Match        MatchKind `json:"match"`
	LocalID      string    `json:"local_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// ReconcileOptions - параметры запуска
type ReconcileOptions struct {
	FailFast bool `json:"fail_fast"`
	DryRun   bool `json:"dry_run"`
}

// ReconcileReport - отчет о запуске сверки
type ReconcileReport struct {
	RunID      uuid.UUID        `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Options    ReconcileOptions `json:"options"`
	Created    int              `json:"created"`
	Updated    int              `json:"updated"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	Results    []RecordResult   `json:"results"`
}

// NewReconcileReport создает пустой отчет нового запуска
func NewReconcileReport(opts ReconcileOptions, now time.Time) *ReconcileReport {
	return &ReconcileReport{
		RunID:     uuid.New(),
		StartedAt: now,
		Options:   opts,
		Results:   make([]RecordResult, 0),
	}
}

// Tally пересчитывает счетчики по Results
func (r *ReconcileReport) Tally() {
	r.Created, r.Updated, r.Skipped, r.Failed = 0, 0, 0, 0
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeCreated:
			r.Created++
		case OutcomeUpdated:
			r.Updated++
		case OutcomeSkipped:
			r.Skipped++
		case OutcomeFailed:
			r.Failed++
		}
	}
}

// HasFailures - были ли ошибки записи
func (r *ReconcileReport) HasFailures() bool {
	return r.Failed > 0
}
