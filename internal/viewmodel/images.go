package viewmodel

import "rssreader/internal/sanitizer"

type ArticleKey struct {
	Feed    int
	Article int
}

// ImageToggles хранит, для каких статей изображения показаны. По умолчанию
// все изображения скрыты заглушками.
type ImageToggles struct {
	shown map[ArticleKey]bool
}

func NewImageToggles() *ImageToggles {
	return &ImageToggles{shown: make(map[ArticleKey]bool)}
}

// Toggle переключает состояние статьи и возвращает новое значение.
func (t *ImageToggles) Toggle(key ArticleKey) bool {
	shown := !t.shown[key]
	if shown {
		t.shown[key] = true
	} else {
		delete(t.shown, key)
	}
	return shown
}

func (t *ImageToggles) Shown(key ArticleKey) bool {
	return t.shown[key]
}

// Render возвращает тело статьи в текущем состоянии. body ожидается с
// заглушками, как его отдаёт normalizer.RenderBody.
func (t *ImageToggles) Render(key ArticleKey, body string) string {
	if t.Shown(key) {
		return sanitizer.RestoreImages(body)
	}
	return body
}

// ButtonLabel — подпись кнопки переключения для статьи.
func (t *ImageToggles) ButtonLabel(key ArticleKey) string {
	if t.Shown(key) {
		return "Hide Images"
	}
	return "Toggle Images"
}
