package usecases_port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

type ResolveAssetPort interface {
	Execute(ctx context.Context, address string) (domain.Asset, error)
}
