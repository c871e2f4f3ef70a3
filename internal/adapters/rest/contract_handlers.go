package rest

import (
	"net/http"
	"strings"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port/usecases_port"
)

type ContractHandler struct {
	resolveUC   usecases_port.ResolveAssetPort
	listUC      usecases_port.ListContractsPort
	createUC    usecases_port.CreateContractPort
	reconcileUC usecases_port.ReconcileContractsPort
}

func NewContractHandler(
	resolveUC usecases_port.ResolveAssetPort,
	listUC usecases_port.ListContractsPort,
	createUC usecases_port.CreateContractPort,
	reconcileUC usecases_port.ReconcileContractsPort,
) *ContractHandler {
	return &ContractHandler{
		resolveUC:   resolveUC,
		listUC:      listUC,
		createUC:    createUC,
		reconcileUC: reconcileUC,
	}
}

// ResolveAsset - GET /api/v1/assets/resolve?address=...
func (h *ContractHandler) ResolveAsset(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		WriteJSONError(w, http.StatusBadRequest, "query parameter 'address' is required")
		return
	}

	asset, err := h.resolveUC.Execute(r.Context(), address)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, asset)
}

// ListContracts - GET /api/v1/contracts
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.listUC.Execute(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if contracts == nil {
		contracts = []domain.LocalContract{}
	}
	RespondWithJSON(w, http.StatusOK, ContractsResponse{Total: len(contracts), Contracts: contracts})
}

// CreateContract - POST /api/v1/contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateContract"})

	var dto CreateContractRequestDTO
	if err := decodeAndValidate(r, &dto, false); err != nil {
		logger.Warn("Rejected contract request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := dto.toDomain()
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.createUC.Execute(r.Context(), req)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, created)
}

// ReconcileContracts - POST /api/v1/contracts/reconcile
func (h *ContractHandler) ReconcileContracts(w http.ResponseWriter, r *http.Request) {
	var dto ReconcileRequestDTO
	if err := decodeAndValidate(r, &dto, true); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reconcileUC.Execute(r.Context(), domain.ReconcileOptions{
		FailFast: dto.FailFast,
		DryRun:   dto.DryRun,
	})
	if err != nil && report == nil {
		WriteDomainError(w, err)
		return
	}

	// прерванный запуск все равно отдает частичный отчет
	RespondWithJSON(w, http.StatusOK, report)
}
