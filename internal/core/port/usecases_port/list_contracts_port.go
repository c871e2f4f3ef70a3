package usecases_port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

type ListContractsPort interface {
	Execute(ctx context.Context) ([]domain.LocalContract, error)
}
