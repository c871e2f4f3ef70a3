package port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// LocalContractStore - локальное хранилище договоров
type LocalContractStore interface {
	ListAll(ctx context.Context) ([]domain.LocalContract, error)
	// Create сохраняет договор; пустой ID заполняется хранилищем
	Create(ctx context.Context, contract *domain.LocalContract) error
	// Update применяет частичное обновление, domain.ErrContractNotFound если id нет
	Update(ctx context.Context, id string, update domain.LocalContractUpdate) error
}
