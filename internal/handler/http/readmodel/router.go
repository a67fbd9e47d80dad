package readmodel_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"readmodel/internal/app/projection"
)

func RegisterRoutes(r chi.Router, s projection.ProjectionService, l *zap.Logger) {
	handler := NewReadModelHandler(s, l.With(zap.String("component", "ReadModelHTTPHandler")))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Read model service is healthy!"))
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/{id}", handler.GetAccountHandler)
		r.Get("/{id}/transactions", handler.ListTransactionsHandler)
	})

	r.Route("/transfers", func(r chi.Router) {
		r.Get("/{id}", handler.GetTransferHandler)
	})
}
