package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"

	"github.com/ttacon/libphonenumber"
)

const defaultPhoneRegion = "ES"

// CreateContractUseCase создает арендатора и договор во внешней системе
// для объекта, найденного по адресу, и сохраняет локальную копию договора
type CreateContractUseCase struct {
	remote      port.RemoteSystemPort
	store       port.LocalContractStore
	phoneRegion string
	now         func() time.Time
}

func NewCreateContractUseCase(remote port.RemoteSystemPort, store port.LocalContractStore, phoneRegion string) *CreateContractUseCase {
	if phoneRegion == "" {
		phoneRegion = defaultPhoneRegion
	}
	return &CreateContractUseCase{
		remote:      remote,
		store:       store,
		phoneRegion: strings.ToUpper(phoneRegion),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *CreateContractUseCase) Execute(ctx context.Context, req domain.ContractRequest) (*domain.CreatedContract, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "CreateContract",
		"address":     req.Address,
		"tenant_name": req.TenantName,
	})
	ucLogger.Info("Use case started", nil)

	phone, err := NormalizePhone(req.TenantPhone, uc.phoneRegion)
	if err != nil {
		ucLogger.Warn("Tenant phone rejected", port.Fields{"phone": req.TenantPhone})
		return nil, err
	}

	assets, err := uc.remote.ListAssets(ctx)
	if err != nil {
		ucLogger.Error("Failed to fetch remote assets", err, nil)
		return nil, fmt.Errorf("failed to fetch remote assets: %w", err)
	}

	asset, ok := ResolveAsset(req.Address, assets)
	if !ok {
		ucLogger.Warn("Address did not match any remote asset", port.Fields{"assets_count": len(assets)})
		return nil, &domain.AssetNotResolvedError{Address: req.Address}
	}
	ucLogger = ucLogger.WithFields(port.Fields{"asset_id": asset.ID})

	tenantID, err := uc.remote.CreateTenant(ctx, domain.NewTenant{
		Name:  strings.TrimSpace(req.TenantName),
		Email: strings.TrimSpace(req.TenantEmail),
		Phone: phone,
	})
	if err != nil {
		ucLogger.Error("Remote system rejected tenant", err, nil)
		return nil, fmt.Errorf("failed to create remote tenant: %w", err)
	}

	deposit := req.Price
	if req.Deposit != nil {
		deposit = *req.Deposit
	}

	remoteContractID, err := uc.remote.CreateContract(ctx, domain.NewRemoteContract{
		AssetID:   asset.ID,
		TenantID:  tenantID,
		DateStart: req.DateStart,
		DateEnd:   req.DateEnd,
		Price:     req.Price,
		Deposit:   deposit,
	})
	if err != nil {
		ucLogger.Error("Remote system rejected contract", err, port.Fields{"remote_tenant_id": tenantID})
		return nil, fmt.Errorf("failed to create remote contract: %w", err)
	}

	now := uc.now()
	propertyName := strings.TrimSpace(req.PropertyName)
	if propertyName == "" {
		propertyName = asset.DisplayName()
	}

	var end *time.Time
	if req.DateEnd != nil {
		e := domain.TruncateToDay(*req.DateEnd)
		end = &e
	}

	local := domain.LocalContract{
		TenantName:     strings.TrimSpace(req.TenantName),
		PropertyName:   propertyName,
		RoomName:       strings.TrimSpace(req.RoomName),
		RentAmount:     req.Price,
		DepositAmount:  deposit,
		StartDate:      domain.TruncateToDay(req.DateStart),
		EndDate:        end,
		Status:         domain.DeriveStatus(req.DateEnd, now),
		RemoteID:       &remoteContractID,
		RemoteSynced:   true,
		LastRemoteSync: &now,
		CreatedAt:      now,
	}

	if err := uc.store.Create(ctx, &local); err != nil {
		// договор уже есть во внешней системе, следующая сверка импортирует его
		ucLogger.Error("Failed to store local contract", err, port.Fields{"remote_contract_id": remoteContractID})
		return nil, fmt.Errorf("failed to store local contract: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"local_id":           local.ID,
		"remote_contract_id": remoteContractID,
	})

	return &domain.CreatedContract{
		Local:            local,
		Asset:            asset,
		RemoteTenantID:   tenantID,
		RemoteContractID: remoteContractID,
	}, nil
}

// NormalizePhone приводит номер к E.164. Пустой номер допустим.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", domain.ErrInvalidPhone, raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPhone, raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
