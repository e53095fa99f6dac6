// Package viewmodel описывает состояние страницы читалки: какой экран открыт
// и какие статьи показывают изображения. Переходы — чистые функции.
package viewmodel

import (
	"fmt"
	"strconv"
)

type View int

const (
	ViewHome View = iota
	ViewFeed
	ViewArticle
)

func (v View) String() string {
	switch v {
	case ViewFeed:
		return "feed"
	case ViewArticle:
		return "article"
	default:
		return "home"
	}
}

// Shape — число статей в каждой ленте, по порядку реестра. По нему
// проверяются переходы.
type Shape []int

func (s Shape) hasFeed(i int) bool {
	return i >= 0 && i < len(s)
}

func (s Shape) hasArticle(i, j int) bool {
	return s.hasFeed(i) && j >= 0 && j < s[i]
}

// State — текущий экран: Home, Feed(i) или Article(i, j).
type State struct {
	View    View `json:"view"`
	Feed    int  `json:"feed"`
	Article int  `json:"article"`
}

func Home() State {
	return State{View: ViewHome, Feed: -1, Article: -1}
}

// ShowFeed переходит к списку статей ленты i. Недопустимый индекс оставляет
// состояние без изменений.
func (s State) ShowFeed(shape Shape, i int) State {
	if !shape.hasFeed(i) {
		return s
	}
	return State{View: ViewFeed, Feed: i, Article: -1}
}

func (s State) ShowArticle(shape Shape, i, j int) State {
	if !shape.hasArticle(i, j) {
		return s
	}
	return State{View: ViewArticle, Feed: i, Article: j}
}

func (s State) ShowHome() State {
	return Home()
}

// Back: Article(i, j) -> Feed(i) -> Home.
func (s State) Back() State {
	switch s.View {
	case ViewArticle:
		return State{View: ViewFeed, Feed: s.Feed, Article: -1}
	default:
		return Home()
	}
}

// FloatingNav сообщает, нужны ли кнопки прокрутки страницы.
func (s State) FloatingNav() bool {
	return s.View == ViewArticle
}

// ElementID — id элемента страницы, который активен в этом состоянии.
func (s State) ElementID() string {
	switch s.View {
	case ViewFeed:
		return FeedID(s.Feed)
	case ViewArticle:
		return ArticleID(s.Feed, s.Article)
	default:
		return "main-navigation"
	}
}

func (s State) IsHome() bool {
	return s.View == ViewHome
}

func (s State) IsFeed(i int) bool {
	return s.View == ViewFeed && s.Feed == i
}

func (s State) IsArticle(i, j int) bool {
	return s.View == ViewArticle && s.Feed == i && s.Article == j
}

func FeedID(i int) string {
	return fmt.Sprintf("feed-%d", i)
}

func ArticleID(i, j int) string {
	return fmt.Sprintf("article-%d-%d", i, j)
}

// FromQuery строит начальное состояние из параметров feed и article.
// Любое недопустимое значение даёт Home.
func FromQuery(shape Shape, feed, article string) State {
	if feed == "" {
		return Home()
	}
	i, err := strconv.Atoi(feed)
	if err != nil || !shape.hasFeed(i) {
		return Home()
	}
	if article == "" {
		return Home().ShowFeed(shape, i)
	}
	j, err := strconv.Atoi(article)
	if err != nil || !shape.hasArticle(i, j) {
		return Home()
	}
	return Home().ShowArticle(shape, i, j)
}
