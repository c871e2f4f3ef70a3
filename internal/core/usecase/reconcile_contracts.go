package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"golang.org/x/sync/errgroup"
)

// ReconcileLockKey - ключ блокировки запуска сверки
const ReconcileLockKey = "rentia:reconcile-contracts"

const defaultReconcileWorkers = 4

// PlanReconciliation решает судьбу каждого удаленного договора по снимку
// локальных договоров на начало запуска. Ничего не пишет.
//
// Сопоставление: сначала по remoteId, затем по имени арендатора без учета
// регистра; при нескольких кандидатах побеждает первый в порядке local.
func PlanReconciliation(remote []domain.RemoteContract, local []domain.LocalContract, now time.Time) []domain.ReconcileAction {
	actions := make([]domain.ReconcileAction, 0, len(remote))

	for _, rc := range remote {
		tenant := domain.IdentifyTenant(rc)
		action := domain.ReconcileAction{
			Remote: rc,
			Tenant: tenant,
			Match:  domain.MatchNone,
		}

		idx, match := findLocalMatch(rc.ID, tenant.Name, local)
		if idx >= 0 {
			existing := local[idx]
			action.Match = match
			action.LocalID = existing.ID

			switch {
			case rc.DateEnd == nil:
				action.Kind = domain.ActionSkip
				action.SkipReason = domain.SkipReasonNoRemoteEnd
			case domain.SameCalendarDay(rc.DateEnd, existing.EndDate):
				action.Kind = domain.ActionSkip
				action.SkipReason = domain.SkipReasonUpToDate
			default:
				end := domain.TruncateToDay(*rc.DateEnd)
				syncedAt := now
				action.Kind = domain.ActionUpdate
				action.Update = domain.LocalContractUpdate{
					EndDate:        &end,
					RemoteID:       optionalRemoteID(rc.ID),
					LastRemoteSync: &syncedAt,
				}
			}
			actions = append(actions, action)
			continue
		}

		if rc.DateEnd != nil && domain.TruncateToDay(*rc.DateEnd).Year() < domain.HistoricalCutoffYear {
			action.Kind = domain.ActionSkip
			action.SkipReason = domain.SkipReasonHistorical
			actions = append(actions, action)
			continue
		}

		action.Kind = domain.ActionCreate
		action.NewLocal = newLocalFromRemote(rc, tenant, now)
		actions = append(actions, action)
	}

	return actions
}

func findLocalMatch(remoteID, tenantName string, local []domain.LocalContract) (int, domain.MatchKind) {
	if remoteID != "" {
		for i, lc := range local {
			if lc.HasRemoteID(remoteID) {
				return i, domain.MatchByRemoteID
			}
		}
	}
	for i, lc := range local {
		if lc.SameTenant(tenantName) {
			return i, domain.MatchByTenantName
		}
	}
	return -1, domain.MatchNone
}

func newLocalFromRemote(rc domain.RemoteContract, tenant domain.TenantIdentity, now time.Time) *domain.LocalContract {
	var price float64
	if rc.Price != nil {
		price = *rc.Price
	}

	start := domain.TruncateToDay(now)
	if rc.DateStart != nil {
		start = domain.TruncateToDay(*rc.DateStart)
	}

	var end *time.Time
	if rc.DateEnd != nil {
		e := domain.TruncateToDay(*rc.DateEnd)
		end = &e
	}

	syncedAt := now

	return &domain.LocalContract{
		TenantName:     tenant.Name,
		PropertyName:   rc.PropertyName,
		RoomName:       rc.RoomName,
		RentAmount:     price,
		DepositAmount:  price,
		StartDate:      start,
		EndDate:        end,
		Status:         domain.DeriveStatus(rc.DateEnd, now),
		RemoteID:       optionalRemoteID(rc.ID),
		RemoteSynced:   true,
		LastRemoteSync: &syncedAt,
		CreatedAt:      now,
	}
}

// пустой id не записывается: remote_id уникален
func optionalRemoteID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// ReconcileContractsUseCase - пакетная сверка договоров внешней системы с локальными
type ReconcileContractsUseCase struct {
	remote    port.RemoteContractSource
	store     port.LocalContractStore
	lock      port.RunLockPort
	publisher port.ReconcileReportPublisherPort
	workers   int
	now       func() time.Time
}

// NewReconcileContractsUseCase; publisher может быть nil
func NewReconcileContractsUseCase(
	remote port.RemoteContractSource,
	store port.LocalContractStore,
	lock port.RunLockPort,
	publisher port.ReconcileReportPublisherPort,
	workers int,
) *ReconcileContractsUseCase {
	if workers <= 0 {
		workers = defaultReconcileWorkers
	}
	return &ReconcileContractsUseCase{
		remote:    remote,
		store:     store,
		lock:      lock,
		publisher: publisher,
		workers:   workers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ReconcileContractsUseCase) Execute(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconcileReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "ReconcileContracts",
		"fail_fast": opts.FailFast,
		"dry_run":   opts.DryRun,
	})

	lockCtx, release, err := uc.lock.Acquire(ctx, ReconcileLockKey)
	if err != nil {
		ucLogger.Warn("Could not acquire reconciliation lock", port.Fields{"error": err.Error()})
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))
	// при потере блокировки записи прекращаются
	ctx = lockCtx

	now := uc.now()
	report := domain.NewReconcileReport(opts, now)
	ucLogger = ucLogger.WithFields(port.Fields{"run_id": report.RunID.String()})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	ucLogger.Info("Use case started", nil)

	remote, err := uc.remote.ListActiveContracts(ctx)
	if err != nil {
		ucLogger.Error("Failed to fetch remote contracts, nothing was written", err, nil)
		return nil, fmt.Errorf("failed to fetch remote contracts: %w", err)
	}

	local, err := uc.store.ListAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to load local contracts, nothing was written", err, nil)
		return nil, fmt.Errorf("failed to load local contracts: %w", err)
	}

	actions := PlanReconciliation(remote, local, now)
	ucLogger.Debug("Reconciliation planned", port.Fields{
		"remote_count": len(remote),
		"local_count":  len(local),
	})

	report.Results = uc.apply(ctx, actions, opts)
	report.FinishedAt = uc.now()
	report.Tally()

	summary := port.Fields{
		"created": report.Created,
		"updated": report.Updated,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}
	if report.HasFailures() {
		ucLogger.Warn("Reconciliation finished with failures", summary)
	} else {
		ucLogger.Info("Reconciliation finished", summary)
	}

	if !opts.DryRun && uc.publisher != nil {
		if err := uc.publisher.PublishReport(context.WithoutCancel(ctx), report); err != nil {
			ucLogger.Error("Failed to publish reconciliation report", err, nil)
		}
	}

	if ctx.Err() != nil {
		return report, fmt.Errorf("reconciliation interrupted: %w", context.Cause(ctx))
	}
	return report, nil
}

// apply выполняет записи. Действия с одним ключом идут последовательно
// в исходном порядке, разные ключи - параллельно.
func (uc *ReconcileContractsUseCase) apply(ctx context.Context, actions []domain.ReconcileAction, opts domain.ReconcileOptions) []domain.RecordResult {
	results := make([]domain.RecordResult, len(actions))

	var groupOrder []string
	groups := make(map[string][]int)

	for i, a := range actions {
		results[i] = domain.RecordResult{
			RemoteID:     a.Remote.ID,
			TenantName:   a.Tenant.Name,
			TenantSource: a.Tenant.Source.String(),
			Match:        a.Match,
			LocalID:      a.LocalID,
		}

		if a.Kind == domain.ActionSkip {
			results[i].Outcome = domain.OutcomeSkipped
			results[i].Reason = a.SkipReason
			continue
		}

		if opts.DryRun {
			results[i].Outcome = plannedOutcome(a.Kind)
			results[i].Reason = domain.ReasonDryRun
			continue
		}

		key := a.LockKey()
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], i)
	}

	var aborted atomic.Bool
	var g errgroup.Group
	g.SetLimit(uc.workers)

	for _, key := range groupOrder {
		indexes := groups[key]
		g.Go(func() error {
			for _, i := range indexes {
				if aborted.Load() || ctx.Err() != nil {
					results[i].Outcome = domain.OutcomeSkipped
					results[i].Reason = domain.SkipReasonBatchAborted
					continue
				}

				localID, err := uc.write(ctx, actions[i])
				if err != nil {
					contextkeys.LoggerFromContext(ctx).Error("Failed to write contract", err, port.Fields{
						"remote_id": actions[i].Remote.ID,
						"local_id":  actions[i].LocalID,
					})
					results[i].Outcome = domain.OutcomeFailed
					results[i].Reason = err.Error()
					if opts.FailFast {
						aborted.Store(true)
					}
					continue
				}

				results[i].Outcome = plannedOutcome(actions[i].Kind)
				results[i].LocalID = localID
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (uc *ReconcileContractsUseCase) write(ctx context.Context, a domain.ReconcileAction) (string, error) {
	switch a.Kind {
	case domain.ActionCreate:
		contract := *a.NewLocal
		if err := uc.store.Create(ctx, &contract); err != nil {
			return "", fmt.Errorf("create local contract for remote %s: %w", a.Remote.ID, err)
		}
		return contract.ID, nil
	case domain.ActionUpdate:
		if err := uc.store.Update(ctx, a.LocalID, a.Update); err != nil {
			return "", fmt.Errorf("update local contract %s: %w", a.LocalID, err)
		}
		return a.LocalID, nil
	default:
		return a.LocalID, nil
	}
}

func plannedOutcome(kind domain.ActionKind) domain.Outcome {
	if kind == domain.ActionCreate {
		return domain.OutcomeCreated
	}
	return domain.OutcomeUpdated
}
