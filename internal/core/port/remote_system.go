package port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// RemoteAssetSource - список объектов внешней системы учета
type RemoteAssetSource interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
}

// RemoteContractSource - активные договоры внешней системы
type RemoteContractSource interface {
	ListActiveContracts(ctx context.Context) ([]domain.RemoteContract, error)
}

// RemoteTenantSink создает арендатора и возвращает его id во внешней системе
type RemoteTenantSink interface {
	CreateTenant(ctx context.Context, tenant domain.NewTenant) (string, error)
}

// RemoteContractSink создает договор и возвращает его id во внешней системе
type RemoteContractSink interface {
	CreateContract(ctx context.Context, contract domain.NewRemoteContract) (string, error)
}

// RemoteSystemPort - все операции внешней системы, которые использует сервис
type RemoteSystemPort interface {
	RemoteAssetSource
	RemoteContractSource
	RemoteTenantSink
	RemoteContractSink
}
