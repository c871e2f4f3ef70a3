package usecase

import (
	"context"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
)

type ListContractsUseCase struct {
	store port.LocalContractStore
	now   func() time.Time
}

func NewListContractsUseCase(store port.LocalContractStore) *ListContractsUseCase {
	return &ListContractsUseCase{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Execute возвращает договоры со статусом, пересчитанным на текущий момент
func (uc *ListContractsUseCase) Execute(ctx context.Context) ([]domain.LocalContract, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "ListContracts"})

	contracts, err := uc.store.ListAll(ctx)
	if err != nil {
		ucLogger.Error("Failed to list local contracts", err, nil)
		return nil, err
	}

	now := uc.now()
	for i := range contracts {
		contracts[i].Status = contracts[i].CurrentStatus(now)
	}

	ucLogger.Debug("Local contracts listed", port.Fields{"count": len(contracts)})
	return contracts, nil
}
