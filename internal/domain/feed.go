package domain

import "encoding/json"

// FeedSource — элемент реестра лент. Позиция в реестре определяет порядок вывода.
type FeedSource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// RawItem — элемент ленты в том виде, в каком его отдал парсер.
// Набор ключей зависит от источника, поэтому схема не фиксирована.
type RawItem map[string]any

// Feed — разобранная лента до нормализации.
type Feed struct {
	Title         string
	Link          string
	Description   string
	LastBuildDate string
	Items         []RawItem
}

type Article struct {
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	PubDate        string  `json:"pubDate"`
	ContentSnippet string  `json:"contentSnippet"`
	Content        string  `json:"content"`
	ContentEncoded string  `json:"contentEncoded"`
	Author         string  `json:"author"`
	DebugData      RawItem `json:"debugData,omitempty"`
}

// MarshalJSON выводит debugData всякий раз, когда поле задано, в том числе
// пустой объект для элемента без полей. nil означает обычный режим.
func (a Article) MarshalJSON() ([]byte, error) {
	type article Article
	out := struct {
		article
		DebugData *RawItem `json:"debugData,omitempty"`
	}{article: article(a)}
	if a.DebugData != nil {
		out.DebugData = &a.DebugData
	}
	return json.Marshal(out)
}

// FeedResult — результат обработки одной ленты. Ошибочный результат отличается
// только наличием Error; Articles в нём всегда пустой, но не nil.
type FeedResult struct {
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	Articles      []Article `json:"articles"`
	Error         string    `json:"error,omitempty"`
	LastBuildDate string    `json:"lastBuildDate"`
}

func (r FeedResult) Failed() bool {
	return r.Error != ""
}
