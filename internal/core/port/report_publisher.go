package port

import (
	"context"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
)

// ReconcileReportPublisherPort публикует отчет о завершенном запуске сверки
type ReconcileReportPublisherPort interface {
	PublishReport(ctx context.Context, report *domain.ReconcileReport) error
}
