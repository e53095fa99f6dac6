package normalizer

import (
	"strings"

	"rssreader/internal/domain"
	"rssreader/internal/sanitizer"
)

const (
	LabelFullContent = "Full Content"
	LabelContent     = "Content"
	LabelSummary     = "Summary"

	NoContent = "No content available"
)

type Section struct {
	Label string `json:"label"`
	Body  string `json:"body"`
}

// Sections выбирает, что показывать в теле статьи: полный текст, затем обычный
// контент, если он отличается от полного, и краткое содержание только когда
// ничего другого нет. Пустой результат означает "No content available".
func Sections(a domain.Article) []Section {
	var sections []Section
	if strings.TrimSpace(a.ContentEncoded) != "" {
		sections = append(sections, Section{Label: LabelFullContent, Body: a.ContentEncoded})
	}
	if strings.TrimSpace(a.Content) != "" && a.Content != a.ContentEncoded {
		sections = append(sections, Section{Label: LabelContent, Body: a.Content})
	}
	if len(sections) == 0 && strings.TrimSpace(a.ContentSnippet) != "" {
		sections = append(sections, Section{Label: LabelSummary, Body: a.ContentSnippet})
	}
	return sections
}

// RenderBody собирает HTML тела статьи с отложенной загрузкой изображений.
func RenderBody(a domain.Article) string {
	sections := Sections(a)
	if len(sections) == 0 {
		return `<div class="content-section">` + NoContent + `</div>`
	}

	var b strings.Builder
	for _, s := range sections {
		b.WriteString(`<div class="content-section">`)
		b.WriteString(`<h3>` + s.Label + `:</h3>`)
		b.WriteString(sanitizer.DeferImages(s.Body))
		b.WriteString(`</div>`)
	}
	return b.String()
}
