package domain

import (
	"fmt"
	"strings"
)

// RecordKind - тип записи каталога
type RecordKind string

const (
	KindOpportunity RecordKind = "opportunity"
	KindProperty    RecordKind = "property"
)

// Room - комната объекта аренды
type Room struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Price     float64 `json:"price" yaml:"price"`
	Available bool    `json:"available" yaml:"available"`
}

// Financials - финансовые показатели инвестиционной возможности
type Financials struct {
	PurchasePrice   float64 `json:"purchase_price" yaml:"purchase_price"`
	TotalInvestment float64 `json:"total_investment" yaml:"total_investment"`
	AgencyFee       float64 `json:"agency_fee,omitempty" yaml:"agency_fee"` // 0 - применить тарифное правило
	ProjectedRent   float64 `json:"projected_rent,omitempty" yaml:"projected_rent"`
	TraditionalRent float64 `json:"traditional_rent,omitempty" yaml:"traditional_rent"`
}

// CatalogRecord - запись каталога: инвестиционная возможность или объект аренды.
// Приходит из живого хранилища или из статического каталога.
type CatalogRecord struct {
	ID         string      `json:"id" yaml:"id"`
	Kind       RecordKind  `json:"kind" yaml:"kind"`
	Deleted    bool        `json:"deleted,omitempty" yaml:"deleted"`
	Title      string      `json:"title,omitempty" yaml:"title"`
	Address    string      `json:"address,omitempty" yaml:"address"`
	City       string      `json:"city,omitempty" yaml:"city"`
	Rooms      []Room      `json:"rooms,omitempty" yaml:"rooms"`
	Financials *Financials `json:"financials,omitempty" yaml:"financials"`
	CreatedAt  Timestamp   `json:"created_at" yaml:"created_at"`
}

// Validate проверяет обязательные поля по типу записи:
// возможности нужны заголовок и финансы, объекту - адрес и список комнат
func (r CatalogRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCatalogRecord)
	}
	switch r.Kind {
	case KindOpportunity:
		if strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("%w: opportunity %s has no title", ErrInvalidCatalogRecord, r.ID)
		}
		if r.Financials == nil {
			return fmt.Errorf("%w: opportunity %s has no financials", ErrInvalidCatalogRecord, r.ID)
		}
	case KindProperty:
		if strings.TrimSpace(r.Address) == "" {
			return fmt.Errorf("%w: property %s has no address", ErrInvalidCatalogRecord, r.ID)
		}
		if r.Rooms == nil {
			return fmt.Errorf("%w: property %s has no room list", ErrInvalidCatalogRecord, r.ID)
		}
	default:
		return fmt.Errorf("%w: record %s has unknown kind %q", ErrInvalidCatalogRecord, r.ID, r.Kind)
	}
	return nil
}

// IsValid - удобная обертка над Validate
func (r CatalogRecord) IsValid() bool {
	return r.Validate() == nil
}

// SortMode - порядок выдачи каталога
type SortMode string

const (
	SortNone   SortMode = ""
	SortRecent SortMode = "recent"
	SortYield  SortMode = "yield"
	SortCity   SortMode = "city"
)

// ParseSortMode разбирает параметр запроса; неизвестное значение - ошибка
func ParseSortMode(s string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortNone, SortRecent, SortYield, SortCity:
		return mode, nil
	default:
		return SortNone, fmt.Errorf("unknown sort mode %q", s)
	}
}
