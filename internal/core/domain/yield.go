package domain

import "github.com/shopspring/decimal"

var (
	agencyFeeRate      = decimal.RequireFromString("0.03")
	agencyFeeThreshold = decimal.NewFromInt(100000)
	agencyFeeFlat      = decimal.NewFromInt(3000)
	vatMultiplier      = decimal.RequireFromString("1.21")
	monthsPerYear      = decimal.NewFromInt(12)
	percent            = decimal.NewFromInt(100)
)

// MonthlyIncome - прогнозная аренда, если она положительна, иначе традиционная
func (f Financials) MonthlyIncome() decimal.Decimal {
	if f.ProjectedRent > 0 {
		return decimal.NewFromFloat(f.ProjectedRent)
	}
	return decimal.NewFromFloat(f.TraditionalRent)
}

// AgencyFeeWithTax - комиссия агентства с НДС 21%.
// Без явной комиссии: 3% цены покупки выше 100 000, иначе фиксированные 3 000.
func (f Financials) AgencyFeeWithTax() decimal.Decimal {
	fee := decimal.NewFromFloat(f.AgencyFee)
	if !fee.IsPositive() {
		price := decimal.NewFromFloat(f.PurchasePrice)
		if price.GreaterThan(agencyFeeThreshold) {
			fee = price.Mul(agencyFeeRate)
		} else {
			fee = agencyFeeFlat
		}
	}
	return fee.Mul(vatMultiplier)
}

// GrossYield - годовая доходность в процентах.
// Без суммы инвестиций или с неположительным знаменателем доходность 0.
func (f Financials) GrossYield() decimal.Decimal {
	investment := decimal.NewFromFloat(f.TotalInvestment)
	if !investment.IsPositive() {
		return decimal.Zero
	}
	denominator := investment.Add(f.AgencyFeeWithTax())
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return f.MonthlyIncome().Mul(monthsPerYear).Div(denominator).Mul(percent)
}

// Yield записи; у записей без финансов доходность 0
func (r CatalogRecord) Yield() decimal.Decimal {
	if r.Financials == nil {
		return decimal.Zero
	}
	return r.Financials.GrossYield()
}
