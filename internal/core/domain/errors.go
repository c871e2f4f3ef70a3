package domain

import (
	"errors"
	"fmt"
)

var (
	ErrContractNotFound     = errors.New("local contract not found")
	ErrReconcileInProgress  = errors.New("contract reconciliation is already running")
	ErrRunLockLost          = errors.New("reconciliation run lock was lost")
	ErrInvalidPhone         = errors.New("phone number is not valid")
	ErrRemoteUnavailable    = errors.New("remote property system request failed")
	ErrInvalidCatalogRecord = errors.New("catalog record is not valid")
)

// AssetNotResolvedError - адрес не совпал ни с одним объектом внешней системы
type AssetNotResolvedError struct {
	Address string
}

func (e *AssetNotResolvedError) Error() string {
	return fmt.Sprintf("no remote asset matches address %q", e.Address)
}
