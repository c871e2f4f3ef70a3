package domain

import "strings"

const (
	// TenantUserType - маркер роли арендатора у пользователей договора
	TenantUserType = 2
	// FallbackTenantName используется, когда внешняя система не отдала имя арендатора
	FallbackTenantName = "Inquilino Rentger"
)

// TenantSource - откуда было взято имя арендатора
type TenantSource int

const (
	TenantFromTaggedUser TenantSource = iota + 1
	TenantFromContractField
	TenantFromFallbackLiteral
)

func (s TenantSource) String() string {
	switch s {
	case TenantFromTaggedUser:
		return "tagged_user"
	case TenantFromContractField:
		return "contract_field"
	case TenantFromFallbackLiteral:
		return "fallback_literal"
	default:
		return "unknown"
	}
}

// TenantIdentity - результат определения арендатора договора
type TenantIdentity struct {
	Source       TenantSource
	Name         string
	RemoteUserID string // только для TenantFromTaggedUser
}

// IdentifyTenant перебирает источники в фиксированном порядке:
// пользователь с ролью арендатора, поле договора, литерал.
func IdentifyTenant(rc RemoteContract) TenantIdentity {
	for _, u := range rc.Users {
		if u.Type == TenantUserType && strings.TrimSpace(u.Name) != "" {
			return TenantIdentity{
				Source:       TenantFromTaggedUser,
				Name:         strings.TrimSpace(u.Name),
				RemoteUserID: u.ID,
			}
		}
	}
	if name := strings.TrimSpace(rc.TenantName); name != "" {
		return TenantIdentity{Source: TenantFromContractField, Name: name}
	}
	return TenantIdentity{Source: TenantFromFallbackLiteral, Name: FallbackTenantName}
}
