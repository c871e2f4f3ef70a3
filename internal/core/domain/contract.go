package domain

import (
	"strings"
	"time"
)

// ContractStatus - статус локального договора
type ContractStatus string

const (
	ContractStatusActive   ContractStatus = "active"
	ContractStatusFinished ContractStatus = "finished"
)

// RemoteContractUser - пользователь, привязанный к договору во внешней системе
type RemoteContractUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

// RemoteContract - договор в том виде, в котором его отдает внешняя система
type RemoteContract struct {
	ID           string
	PropertyName string
	RoomName     string
	TenantName   string
	Users        []RemoteContractUser
	Price        *float64
	DateStart    *time.Time
	DateEnd      *time.Time
}

// LocalContract - договор в локальном хранилище
type LocalContract struct {
	ID             string         `json:"id"`
	TenantName     string         `json:"tenant_name"`
	PropertyName   string         `json:"property_name"`
	RoomName       string         `json:"room_name"`
	RentAmount     float64        `json:"rent_amount"`
	DepositAmount  float64        `json:"deposit_amount"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        *time.Time     `json:"end_date,omitempty"` // nil - бессрочный
	Status         ContractStatus `json:"status"`
	RemoteID       *string        `json:"remote_id,omitempty"`
	RemoteSynced   bool           `json:"remote_synced"`
	LastRemoteSync *time.Time     `json:"last_remote_sync,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DeriveStatus: finished, если дата окончания задана и уже прошла
func DeriveStatus(endDate *time.Time, now time.Time) ContractStatus {
	if endDate != nil && endDate.Before(now) {
		return ContractStatusFinished
	}
	return ContractStatusActive
}

// CurrentStatus пересчитывает статус на момент now.
// Хранимый Status не обновляется при смене даты окончания.
func (c LocalContract) CurrentStatus(now time.Time) ContractStatus {
	return DeriveStatus(c.EndDate, now)
}

// HasRemoteID сообщает, привязан ли договор к id внешней системы
func (c LocalContract) HasRemoteID(id string) bool {
	return c.RemoteID != nil && *c.RemoteID == id
}

// SameTenant - сравнение имен арендаторов без учета регистра
func (c LocalContract) SameTenant(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.TenantName), strings.TrimSpace(name))
}

// LocalContractUpdate - частичное обновление; nil-поля не меняются
type LocalContractUpdate struct {
	EndDate        *time.Time
	RemoteID       *string
	LastRemoteSync *time.Time
}

// SameCalendarDay сравнивает календарные дни, каждый в зоне своей даты.
// Две пустые даты равны, пустая и заданная - нет.
func SameCalendarDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TruncateToDay возвращает полночь UTC того календарного дня,
// который t показывает в своей зоне
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTenant - данные арендатора для создания во внешней системе
type NewTenant struct {
	Name  string
	Email string
	Phone string // E.164
}

// NewRemoteContract - данные договора для создания во внешней системе
type NewRemoteContract struct {
	AssetID   string
	TenantID  string
	DateStart time.Time
	DateEnd   *time.Time
	Price     float64
	Deposit   float64
}

// ContractRequest - запрос на создание договора по адресу объекта
type ContractRequest struct {
	Address      string
	TenantName   string
	TenantEmail  string
	TenantPhone  string
	DateStart    time.Time
	DateEnd      *time.Time
	Price        float64
	Deposit      *float64 // nil - равен цене
	PropertyName string
	RoomName     string
}

// CreatedContract - результат создания договора
type CreatedContract struct {
	Local            LocalContract `json:"local"`
	Asset            Asset         `json:"asset"`
	RemoteTenantID   string        `json:"remote_tenant_id"`
	RemoteContractID string        `json:"remote_contract_id"`
}
