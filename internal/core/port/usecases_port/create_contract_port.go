package usecases_port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

type CreateContractPort interface {
	Execute(ctx context.Context, req domain.ContractRequest) (*domain.CreatedContract, error)
}
