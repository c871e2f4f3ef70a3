// Package schemas содержит JSON Schema событий, которыми сервис обменивается через RabbitMQ.
package schemas

import "embed"

//go:embed events
var SchemasFS embed.FS
