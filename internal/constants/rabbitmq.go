package constants

// Обменник сервиса
const (
	ServiceExchange     = "rentia_exchange"
	ServiceExchangeType = "direct"
)

// Имена очередей
const (
	QueueCatalogChanges = "catalog_changes"
	QueueReconcileTasks = "reconcile_tasks"
)

// Ключи маршрутизации
const (
	RoutingKeyCatalogChanged      = "catalog.changed"
	RoutingKeyReconcileRequested  = "contracts.reconcile"
	RoutingKeyContractsReconciled = "contracts.reconciled"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)

// Типы событий в формате схем
const (
	EventCatalogChanged      = "CatalogChangedEvent"
	EventReconcileRequested  = "ReconcileRequestedEvent"
	EventContractsReconciled = "ContractsReconciledEvent"
	EventVersionV1           = "1.0.0"
)

const (
	FinalDLXExchange   = "rentia_final_dlx"
	FinalDLQ           = "rentia_final_dlq"
	FinalDLQRoutingKey = "rentia.dlq.key"
)
