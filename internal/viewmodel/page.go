package viewmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"rssreader/internal/domain"
	"rssreader/internal/normalizer"
	"rssreader/internal/sanitizer"
)

// Page — всё, что нужно шаблону для отрисовки страницы.
type Page struct {
	Title     string
	UpdatedAt time.Time
	Debug     bool
	Feeds     []FeedView
	State     State
	Images    *ImageToggles
	// FeedsJSON — результаты агрегации для встраивания в <script>.
	FeedsJSON string
}

// ArticleBody отдаёт тело статьи с учётом переключателя изображений.
func (p *Page) ArticleBody(a ArticleView) string {
	return p.Images.Render(a.Key(), a.Body)
}

func (p *Page) ImagesShown(a ArticleView) bool {
	return p.Images.Shown(a.Key())
}

func (p *Page) ImagesLabel(a ArticleView) string {
	return p.Images.ButtonLabel(a.Key())
}

type FeedView struct {
	Index       int
	ID          string
	Title       string
	Description string
	Link        string
	Error       string
	Articles    []ArticleView
}

// NavLabel повторяет подпись пункта навигации: "N articles" и "(Error)".
func (f FeedView) NavLabel() string {
	label := fmt.Sprintf("%d articles", len(f.Articles))
	if f.Error != "" {
		label += " (Error)"
	}
	return label
}

func (f FeedView) Failed() bool {
	return f.Error != ""
}

type ArticleView struct {
	Feed        int
	Index       int
	ID          string
	Title       string
	Link        string
	PubDate     string
	DisplayDate string
	Author      string
	Body        string
	Images      int
	DebugJSON   string
}

// HasLink сообщает, есть ли у статьи настоящая ссылка на оригинал.
func (a ArticleView) HasLink() bool {
	link := strings.TrimSpace(a.Link)
	return link != "" && link != normalizer.NoLink
}

func (a ArticleView) Key() ArticleKey {
	return ArticleKey{Feed: a.Feed, Article: a.Index}
}

// ShapeOf возвращает число статей каждой ленты результата.
func ShapeOf(results []domain.FeedResult) Shape {
	return lo.Map(results, func(r domain.FeedResult, _ int) int {
		return len(r.Articles)
	})
}

// NewPage собирает модель страницы. Ошибка возможна только при сериализации
// встраиваемых данных.
func NewPage(title string, results []domain.FeedResult, debug bool, state State, images *ImageToggles, now time.Time) (*Page, error) {
	data, err := EmbedJSON(results)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = NewImageToggles()
	}
	return &Page{
		Title:     title,
		UpdatedAt: now,
		Debug:     debug,
		State:     state,
		Images:    images,
		FeedsJSON: data,
		Feeds: lo.Map(results, func(r domain.FeedResult, i int) FeedView {
			return feedView(r, i, debug)
		}),
	}, nil
}

func feedView(r domain.FeedResult, i int, debug bool) FeedView {
	return FeedView{
		Index:       i,
		ID:          FeedID(i),
		Title:       lo.Ternary(strings.TrimSpace(r.Title) != "", r.Title, r.Name),
		Description: r.Description,
		Link:        r.Link,
		Error:       r.Error,
		Articles: lo.Map(r.Articles, func(a domain.Article, j int) ArticleView {
			return articleView(a, i, j, debug)
		}),
	}
}

func articleView(a domain.Article, i, j int, debug bool) ArticleView {
	body := normalizer.RenderBody(a)
	view := ArticleView{
		Feed:        i,
		Index:       j,
		ID:          ArticleID(i, j),
		Title:       a.Title,
		Link:        a.Link,
		PubDate:     a.PubDate,
		DisplayDate: DisplayDate(a.PubDate),
		Author:      a.Author,
		Body:        body,
		Images:      len(sanitizer.Placeholders(body)),
	}
	if debug {
		view.DebugJSON = debugJSON(a.DebugData)
	}
	return view
}

// debugJSON форматирует сырой элемент для показа на странице. Разметка не
// экранируется: текст выводится шаблоном.
func debugJSON(raw domain.RawItem) string {
	if raw == nil {
		raw = domain.RawItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// EmbedJSON сериализует результаты для вставки в HTML. encoding/json
// экранирует <, > и & как \u003c, \u003e и \u0026.
func EmbedJSON(results []domain.FeedResult) (string, error) {
	if results == nil {
		results = []domain.FeedResult{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to encode feeds: %w", err)
	}
	return string(data), nil
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02",
}

// DisplayDate переводит дату публикации в короткий вид. Нераспознанная строка
// возвращается как есть.
func DisplayDate(pubDate string) string {
	value := strings.TrimSpace(pubDate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return pubDate
}
