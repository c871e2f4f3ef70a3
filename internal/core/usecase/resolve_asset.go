package usecase

import (
	"context"
	"fmt"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
)

// ResolveAsset возвращает первый объект, чей нормализованный адрес или алиас
// содержит нормализованный target. Порядок assets определяет победителя.
func ResolveAsset(target string, assets []domain.Asset) (domain.Asset, bool) {
	needle := domain.Normalize(target)
	if needle == "" {
		return domain.Asset{}, false
	}
	for _, a := range assets {
		if domain.ContainsNormalized(a.Address, needle) || domain.ContainsNormalized(a.Alias, needle) {
			return a, true
		}
	}
	return domain.Asset{}, false
}

type ResolveAssetUseCase struct {
	assets port.RemoteAssetSource
}

func NewResolveAssetUseCase(assets port.RemoteAssetSource) *ResolveAssetUseCase {
	return &ResolveAssetUseCase{assets: assets}
}

func (uc *ResolveAssetUseCase) Execute(ctx context.Context, address string) (domain.Asset, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ResolveAsset",
		"address":  address,
	})

	assets, err := uc.assets.ListAssets(ctx)
	if err != nil {
		ucLogger.Error("Failed to fetch remote assets", err, nil)
		return domain.Asset{}, fmt.Errorf("failed to fetch remote assets: %w", err)
	}

	asset, ok := ResolveAsset(address, assets)
	if !ok {
		ucLogger.Warn("Address did not match any remote asset", port.Fields{"assets_count": len(assets)})
		return domain.Asset{}, &domain.AssetNotResolvedError{Address: address}
	}

	ucLogger.Debug("Address resolved", port.Fields{"asset_id": asset.ID})
	return asset, nil
}
