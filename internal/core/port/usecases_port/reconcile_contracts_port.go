package usecases_port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

type ReconcileContractsPort interface {
	Execute(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconcileReport, error)
}
