package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"rssreader/internal/domain"
)

// feedTypeRSS — значение gofeed.Feed.FeedType для RSS-документов.
const feedTypeRSS = "rss"

// isoLayout повторяет формат Date.toISOString: UTC, миллисекунды, суффикс Z.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Ключи сырого элемента. Совпадают с полями, которые ожидает нормализатор.
const (
	KeyTitle          = "title"
	KeyLink           = "link"
	KeyPubDate        = "pubDate"
	KeyISODate        = "isoDate"
	KeyCreator        = "creator"
	KeyAuthor         = "author"
	KeyContent        = "content"
	KeyContentSnippet = "contentSnippet"
	KeyContentEncoded = "content:encoded"
	KeySummary        = "summary"
	KeyGUID           = "guid"
	KeyCategories     = "categories"
	KeyEnclosure      = "enclosure"
)

// FeedParser разбирает RSS, Atom и JSON Feed через gofeed.
type FeedParser struct {
	log *slog.Logger
}

func New(log *slog.Logger) *FeedParser {
	return &FeedParser{
		log: log,
	}
}

func (p *FeedParser) Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		p.log.Error(
			"Failed to parse feed document",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := domain.Feed{
		Title:         strings.TrimSpace(parsed.Title),
		Link:          parsed.Link,
		Description:   parsed.Description,
		LastBuildDate: parsed.Updated,
		Items:         make([]domain.RawItem, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Items = append(feed.Items, rawItem(parsed.FeedType, item))
	}
	p.log.Debug(
		"Feed document parsed",
		slog.String("feed_type", parsed.FeedType),
		slog.String("feed_version", parsed.FeedVersion),
		slog.Int("items", len(feed.Items)),
	)
	return &feed, nil
}

// rawItem раскладывает gofeed.Item по ключам сырого элемента. Пустые поля
// не попадают в результат, чтобы нормализатор видел их как отсутствующие.
func rawItem(feedType string, item *gofeed.Item) domain.RawItem {
	raw := domain.RawItem{}
	put := func(key, value string) {
		if value != "" {
			raw[key] = value
		}
	}

	put(KeyTitle, strings.TrimSpace(item.Title))
	put(KeyLink, strings.TrimSpace(item.Link))
	put(KeyGUID, item.GUID)

	pubDate := item.Published
	if pubDate == "" && feedType != feedTypeRSS {
		pubDate = item.Updated
	}
	put(KeyPubDate, pubDate)
	if ts := firstTime(item.PublishedParsed, item.UpdatedParsed); ts != nil {
		put(KeyISODate, ts.UTC().Format(isoLayout))
	}

	if item.DublinCoreExt != nil {
		put(KeyCreator, firstNonEmpty(item.DublinCoreExt.Creator))
	}
	if item.Author != nil {
		if item.Author.Name != "" {
			put(KeyAuthor, item.Author.Name)
		} else {
			put(KeyAuthor, item.Author.Email)
		}
	}

	var content string
	if feedType == feedTypeRSS {
		content = item.Description
		put(KeyContentEncoded, item.Content)
	} else {
		content = item.Content
		if content == "" {
			content = item.Description
		}
		put(KeySummary, item.Description)
	}
	put(KeyContent, content)

	snippetSource := content
	if snippetSource == "" {
		snippetSource = item.Content
	}
	put(KeyContentSnippet, Snippet(snippetSource))

	if len(item.Categories) > 0 {
		raw[KeyCategories] = append([]string(nil), item.Categories...)
	}
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enc := item.Enclosures[0]
		raw[KeyEnclosure] = map[string]any{
			"url":    enc.URL,
			"length": enc.Length,
			"type":   enc.Type,
		}
	}
	return raw
}

// Snippet возвращает текст HTML-фрагмента без разметки со схлопнутыми пробелами.
func Snippet(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func firstTime(times ...*time.Time) *time.Time {
	for _, t := range times {
		if t != nil && !t.IsZero() {
			return t
		}
	}
	return nil
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
