package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	transport "rssreader/internal/transport/http"
)

type Api struct {
	mux      *http.ServeMux
	handlers *transport.Handlers
	log      *slog.Logger
}

func New(handlers *transport.Handlers, log *slog.Logger) *Api {
	api := Api{
		mux:      http.NewServeMux(),
		handlers: handlers,
		log:      log,
	}
	api.endpoints()
	return &api
}

// Метод регистратор endpoint-ов, настраивающий саброутинг.
func (api *Api) endpoints() {
	// страница читалки со всеми лентами
	api.mux.HandleFunc("/{$}", api.handlers.HandlePage)
	// результаты агрегации в JSON
	api.mux.HandleFunc("/api/feeds", api.handlers.HandleFeeds)
	// журнал загрузок с пагинацией
	api.mux.HandleFunc("/api/fetches", api.handlers.HandleFetches)
	api.mux.HandleFunc("/health", api.handlers.HandleHealth)
	api.mux.Handle("/metrics", promhttp.Handler())
	api.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(transport.StaticFS())))
}

// Router возвращает маршрутизатор с цепочкой middleware.
func (api *Api) Router() http.Handler {
	var handler http.Handler = api.mux
	handler = transport.CORSMiddleware()(handler)
	handler = transport.RecoveryMiddleware(api.log)(handler)
	handler = transport.LoggingMiddleware(api.log)(handler)
	handler = transport.RequestIDMiddleware(handler)
	return handler
}
