// Package normalizer приводит элементы лент разной формы к единой модели статьи.
package normalizer

import (
	"fmt"
	"strings"

	"rssreader/internal/domain"
	"rssreader/internal/parser"
)

const (
	NoTitle       = "No Title"
	NoLink        = "#"
	UnknownDate   = "Unknown Date"
	UnknownAuthor = "Unknown Author"
)

// Normalize строит статью из сырого элемента. Каждое поле берётся из первого
// непустого источника цепочки; нормализация никогда не завершается ошибкой.
// DebugData заполняется только в диагностическом режиме.
func Normalize(raw domain.RawItem, parentFeedTitle string, diagnostic bool) domain.Article {
	article := domain.Article{
		Title:          firstOf(NoTitle, field(raw, parser.KeyTitle)),
		Link:           firstOf(NoLink, field(raw, parser.KeyLink)),
		PubDate:        firstOf(UnknownDate, field(raw, parser.KeyPubDate), field(raw, parser.KeyISODate)),
		ContentSnippet: firstOf("", field(raw, parser.KeyContentSnippet), field(raw, parser.KeySummary)),
		Content:        field(raw, parser.KeyContent),
		ContentEncoded: field(raw, parser.KeyContentEncoded),
		Author: firstOf(UnknownAuthor,
			field(raw, parser.KeyCreator),
			field(raw, parser.KeyAuthor),
			parentFeedTitle,
		),
	}
	if diagnostic {
		article.DebugData = raw
		if article.DebugData == nil {
			article.DebugData = domain.RawItem{}
		}
	}
	return article
}

// NormalizeAll сохраняет исходный порядок элементов.
func NormalizeAll(items []domain.RawItem, parentFeedTitle string, diagnostic bool) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, Normalize(item, parentFeedTitle, diagnostic))
	}
	return articles
}

// field извлекает строку из значения произвольного типа. Нераспознанные
// типы считаются отсутствующими.
func field(raw domain.RawItem, key string) string {
	if raw == nil {
		return ""
	}
	return stringValue(raw[key])
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case []string:
		for _, s := range val {
			if strings.TrimSpace(s) != "" {
				return s
			}
		}
	case []any:
		for _, elem := range val {
			if s := stringValue(elem); strings.TrimSpace(s) != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"name", "email", "_"} {
			if s := stringValue(val[key]); strings.TrimSpace(s) != "" {
				return s
			}
		}
	case map[string]string:
		for _, key := range []string{"name", "email", "_"} {
			if s := val[key]; strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func firstOf(fallback string, candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return fallback
}
