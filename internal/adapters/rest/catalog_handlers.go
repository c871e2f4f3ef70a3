package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/adapters/notifier"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/contextkeys"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port"
	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/port/usecases_port"
)

// CatalogSubscriptions - регистрация SSE-подписчиков
type CatalogSubscriptions interface {
	AddClient() notifier.ClientChannel
	RemoveClient(ch notifier.ClientChannel)
}

type CatalogHandler struct {
	catalogView   usecases_port.CatalogViewPort
	subscriptions CatalogSubscriptions
	keepAlive     time.Duration
}

func NewCatalogHandler(catalogView usecases_port.CatalogViewPort, subscriptions CatalogSubscriptions) *CatalogHandler {
	return &CatalogHandler{
		catalogView:   catalogView,
		subscriptions: subscriptions,
		keepAlive:     15 * time.Second,
	}
}

// GetCatalog - GET /api/v1/catalog?sort=recent|yield|city
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetCatalog"})

	mode, err := domain.ParseSortMode(r.URL.Query().Get("sort"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.catalogView.Current(r.Context(), mode)
	if err != nil {
		logger.Error("Failed to build catalog", err, nil)
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, CatalogResponse{
		Sort:    string(mode),
		Total:   len(records),
		Records: toCatalogResponse(records),
	})
}

// RefreshCatalog - POST /api/v1/catalog/refresh
func (h *CatalogHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RefreshCatalog"})

	records, err := h.catalogView.Refresh(r.Context())
	if err != nil {
		logger.Error("Catalog refresh failed", err, nil)
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, CatalogResponse{
		Total:   len(records),
		Records: toCatalogResponse(records),
	})
}

// SubscribeToCatalog - GET /api/v1/catalog/subscribe, поток SSE
func (h *CatalogHandler) SubscribeToCatalog(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubscribeToCatalog"})

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	clientChan := h.subscriptions.AddClient()
	defer h.subscriptions.RemoveClient(clientChan)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	handlerLogger.Info("New client subscribing to catalog events", nil)

	// текущий снимок сразу после подключения
	current, err := h.catalogView.Current(r.Context(), domain.SortNone)
	if err != nil {
		handlerLogger.Error("Failed to load current catalog for subscriber", err, nil)
		return
	}
	initial, err := notifier.FormatEvent(notifier.EventCatalog, current)
	if err != nil {
		handlerLogger.Error("Failed to marshal current catalog", err, nil)
		return
	}
	if _, err := w.Write(initial); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case data := <-clientChan:
			if _, err := w.Write(data); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// строки с двоеточием - комментарии SSE, держат соединение открытым
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected.", nil)
			return
		}
	}
}
