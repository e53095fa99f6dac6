package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	httputils "github.com/Fau1con/renderresponse"

	"rssreader/internal/domain"
	"rssreader/internal/pagination"
	"rssreader/internal/usecase"
	"rssreader/internal/viewmodel"
)

const historyTimeout = 10 * time.Second

// FeedAggregator — единственная точка входа в ядро агрегации.
type FeedAggregator interface {
	AggregateAll(ctx context.Context, sources []domain.FeedSource, diagnostic bool) ([]domain.FeedResult, error)
}

type FetchHistory interface {
	Page(ctx context.Context, page int) (*pagination.Pagination, error)
}

type Options struct {
	Title   string
	Sources []domain.FeedSource
	Debug   bool
}

type Handlers struct {
	feeds   FeedAggregator
	history FetchHistory
	opts    Options
	log     *slog.Logger
	now     func() time.Time
}

// NewHandlers создаёт обработчики. history может быть nil, тогда журнал
// загрузок отвечает 404.
func NewHandlers(feeds FeedAggregator, history FetchHistory, opts Options, log *slog.Logger) *Handlers {
	if opts.Title == "" {
		opts.Title = "RSS Kindle Reader"
	}
	return &Handlers{
		feeds:   feeds,
		history: history,
		opts:    opts,
		log:     log.With(slog.String("component", "http")),
		now:     time.Now,
	}
}

// HandlePage отдаёт страницу читалки со всеми лентами.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	if !httputils.ValidateMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	query := r.URL.Query()
	debug := h.diagnostic(r)
	log := h.log.With(slog.String("request_id", GetRequestID(r.Context())))

	log.Info("Fetching all RSS feeds", slog.Bool("debug", debug))
	results, err := h.feeds.AggregateAll(r.Context(), h.opts.Sources, debug)
	if err != nil {
		log.Error("Error generating page", slog.Any("error", err))
		h.renderError(w, err)
		return
	}

	shape := viewmodel.ShapeOf(results)
	state := viewmodel.FromQuery(shape, query.Get("feed"), query.Get("article"))
	images := viewmodel.NewImageToggles()
	if state.View == viewmodel.ViewArticle && flag(query.Get("images")) {
		images.Toggle(viewmodel.ArticleKey{Feed: state.Feed, Article: state.Article})
	}

	page, err := viewmodel.NewPage(h.opts.Title, results, debug, state, images, h.now())
	if err != nil {
		log.Error("Failed to build page model", slog.Any("error", err))
		h.renderError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Page: page, Links: links{debug: debug}}); err != nil {
		log.Error("Failed to render page", slog.Any("error", err))
		h.renderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleFeeds отдаёт результаты агрегации в JSON.
func (h *Handlers) HandleFeeds(w http.ResponseWriter, r *http.Request) {
	if !httputils.ValidateMethod(w, r, http.MethodGet, http.MethodOptions) {
		return
	}
	results, err := h.feeds.AggregateAll(r.Context(), h.opts.Sources, h.diagnostic(r))
	if err != nil {
		h.log.Error("Failed to aggregate feeds",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.Any("error", err),
		)
		httputils.RenderError(w, "Failed to load feeds", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []domain.FeedResult{}
	}
	httputils.RenderJSON(w, results, http.StatusOK)
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !httputils.ValidateMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	httputils.RenderJSON(w, healthResponse{
		Status:    "OK",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}, http.StatusOK)
}

// HandleFetches отдаёт журнал загрузок с пагинацией по ?page=.
func (h *Handlers) HandleFetches(w http.ResponseWriter, r *http.Request) {
	if !httputils.ValidateMethod(w, r, http.MethodGet, http.MethodOptions) {
		return
	}
	if h.history == nil {
		httputils.RenderError(w, "Fetch history is not configured", http.StatusNotFound)
		return
	}

	pageStr := r.URL.Query().Get("page")
	if pageStr == "" {
		pageStr = "1"
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		httputils.RenderError(w, "Invalid page parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), historyTimeout)
	defer cancel()

	pag, err := h.history.Page(ctx, page)
	if err != nil {
		if errors.Is(err, usecase.ErrHistoryDisabled) {
			httputils.RenderError(w, "Fetch history is not configured", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to read fetch history", slog.Any("error", err))
		httputils.RenderError(w, "Failed to read fetch history", http.StatusInternalServerError)
		return
	}
	httputils.RenderJSON(w, pag, http.StatusOK)
}

func (h *Handlers) diagnostic(r *http.Request) bool {
	if h.opts.Debug {
		return true
	}
	return flag(r.URL.Query().Get("debug"))
}

func (h *Handlers) renderError(w http.ResponseWriter, cause error) {
	var buf bytes.Buffer
	if err := errorTemplate.Execute(&buf, cause.Error()); err != nil {
		http.Error(w, "Error Loading Feeds", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = buf.WriteTo(w)
}

func flag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

type pageData struct {
	*viewmodel.Page
	Links links
}

// links строит адреса переходов для браузеров без JavaScript.
type links struct {
	debug bool
}

func (l links) Home() string {
	return l.build(nil)
}

func (l links) Feed(i int) string {
	return l.build([]string{"feed=" + strconv.Itoa(i)})
}

func (l links) Article(i, j int) string {
	return l.build([]string{"feed=" + strconv.Itoa(i), "article=" + strconv.Itoa(j)})
}

func (l links) Images(i, j int, shown bool) string {
	params := []string{"feed=" + strconv.Itoa(i), "article=" + strconv.Itoa(j)}
	if !shown {
		params = append(params, "images=1")
	}
	return l.build(params)
}

func (l links) build(params []string) string {
	if l.debug {
		params = append(params, "debug=1")
	}
	if len(params) == 0 {
		return "/"
	}
	return "/?" + strings.Join(params, "&")
}

var templateFuncs = template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	"safeJS":   func(s string) template.JS { return template.JS(s) },
	"rfc1123":  func(t time.Time) string { return t.Format(time.RFC1123) },
}
