package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFinancials_AgencyFeeRule(t *testing.T) {
	// 3% выше порога
	assert.True(t, Financials{PurchasePrice: 200000}.AgencyFeeWithTax().Equal(decimal.NewFromInt(7260)))
	// фиксированная комиссия на пороге и ниже
	assert.True(t, Financials{PurchasePrice: 100000}.AgencyFeeWithTax().Equal(decimal.NewFromInt(3630)))
	// явная комиссия
	assert.True(t, Financials{PurchasePrice: 200000, AgencyFee: 1000}.AgencyFeeWithTax().Equal(decimal.NewFromInt(1210)))
}

func TestFinancials_MonthlyIncomePrefersProjectedRent(t *testing.T) {
	assert.True(t, Financials{ProjectedRent: 800, TraditionalRent: 600}.MonthlyIncome().Equal(decimal.NewFromInt(800)))
	assert.True(t, Financials{ProjectedRent: 0, TraditionalRent: 600}.MonthlyIncome().Equal(decimal.NewFromInt(600)))
}

func TestFinancials_GrossYield(t *testing.T) {
	f := Financials{TotalInvestment: 96370, PurchasePrice: 90000, TraditionalRent: 500}
	// 500*12 / (96370 + 3630) * 100 = 6
	assert.True(t, f.GrossYield().Equal(decimal.NewFromInt(6)), f.GrossYield().String())

	assert.True(t, Financials{TotalInvestment: 0, ProjectedRent: 1000}.GrossYield().IsZero())
	assert.True(t, Financials{TotalInvestment: -10, ProjectedRent: 1000}.GrossYield().IsZero())
	assert.True(t, CatalogRecord{}.Yield().IsZero())
}
