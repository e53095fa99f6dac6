// Package sanitizer откладывает загрузку изображений во встроенном HTML:
// теги img заменяются инертными заглушками и восстанавливаются по запросу.
package sanitizer

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

const (
	PlaceholderClass = "image-placeholder"
	DefaultAlt       = "Image"

	attrSrc      = "data-src"
	attrAlt      = "data-alt"
	attrOriginal = "data-original-attributes"
)

// DeferImages заменяет каждый тег img заглушкой, которая хранит src, alt
// (или "Image") и исходную строку атрибутов. Остальная разметка не меняется.
func DeferImages(fragment string) string {
	if !containsFold(fragment, "<img") {
		return fragment
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	var out strings.Builder
	out.Grow(len(fragment))
	for {
		tt := z.Next()
		// TagName и TagAttr переводят байты буфера в нижний регистр,
		// поэтому исходный текст токена копируется заранее.
		raw := append([]byte(nil), z.Raw()...)
		if tt == html.ErrorToken {
			out.Write(raw)
			if z.Err() != io.EOF {
				out.Write(z.Buffered())
			}
			return out.String()
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "img" {
			out.Write(raw)
			continue
		}

		var src, alt string
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch string(key) {
			case "src":
				src = string(val)
			case "alt":
				alt = string(val)
			}
		}
		out.WriteString(placeholder(src, alt, originalAttributes(raw)))
	}
}

// RestoreImages превращает заглушки обратно в теги img. Если заглушка хранит
// исходные атрибуты, тег восстанавливается из них дословно.
func RestoreImages(fragment string) string {
	if !strings.Contains(fragment, PlaceholderClass) {
		return fragment
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	var out strings.Builder
	out.Grow(len(fragment))
	for {
		tt := z.Next()
		raw := append([]byte(nil), z.Raw()...)
		if tt == html.ErrorToken {
			out.Write(raw)
			if z.Err() != io.EOF {
				out.Write(z.Buffered())
			}
			return out.String()
		}
		if tt != html.StartTagToken {
			out.Write(raw)
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "div" || !hasAttr {
			out.Write(raw)
			continue
		}

		attrs := make(map[string]string, 4)
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			attrs[string(key)] = string(val)
		}
		if !isPlaceholder(attrs) {
			out.Write(raw)
			continue
		}

		skipSubtree(z)
		out.WriteString(image(attrs))
	}
}

// Placeholder описывает одну заглушку изображения.
type Placeholder struct {
	Src                string
	Alt                string
	OriginalAttributes string
}

// Placeholders возвращает заглушки фрагмента в порядке следования.
func Placeholders(fragment string) []Placeholder {
	var found []Placeholder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return found
		}
		if tt != html.StartTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "div" {
			continue
		}
		attrs := make(map[string]string, 4)
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			attrs[string(key)] = string(val)
		}
		if isPlaceholder(attrs) {
			found = append(found, Placeholder{
				Src:                attrs[attrSrc],
				Alt:                attrs[attrAlt],
				OriginalAttributes: attrs[attrOriginal],
			})
		}
	}
}

func placeholder(src, alt, original string) string {
	if strings.TrimSpace(alt) == "" {
		alt = DefaultAlt
	}
	var b strings.Builder
	b.WriteString(`<div class="` + PlaceholderClass + `" `)
	b.WriteString(attrSrc + `="` + html.EscapeString(src) + `" `)
	b.WriteString(attrAlt + `="` + html.EscapeString(alt) + `" `)
	b.WriteString(attrOriginal + `="` + html.EscapeString(original) + `">`)
	b.WriteString(`<div class="image-placeholder-content">`)
	b.WriteString(`<div class="image-placeholder-icon">&#128444;&#65039;</div>`)
	b.WriteString(`<div class="image-placeholder-text">` + html.EscapeString(alt) + `</div>`)
	b.WriteString(`<div class="image-placeholder-note">Image not loaded - click &quot;Toggle Images&quot; to view</div>`)
	b.WriteString(`</div></div>`)
	return b.String()
}

func image(attrs map[string]string) string {
	if original, ok := attrs[attrOriginal]; ok {
		return "<img" + original + ">"
	}
	var b strings.Builder
	b.WriteString(`<img src="` + html.EscapeString(attrs[attrSrc]) + `"`)
	if alt := attrs[attrAlt]; alt != "" && alt != DefaultAlt {
		b.WriteString(` alt="` + html.EscapeString(alt) + `"`)
	}
	b.WriteString(">")
	return b.String()
}

// originalAttributes возвращает всё, что стоит между "<img" и закрывающей
// скобкой тега, включая ведущие пробелы и "/" самозакрывающегося тега.
func originalAttributes(raw []byte) string {
	const prefix = len("<img")
	if len(raw) <= prefix {
		return ""
	}
	attrs := raw[prefix:]
	if n := len(attrs); n > 0 && attrs[n-1] == '>' {
		attrs = attrs[:n-1]
	}
	return string(attrs)
}

// skipSubtree пропускает токены до закрытия текущего div.
func skipSubtree(z *html.Tokenizer) {
	depth := 1
	for depth > 0 {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "div" {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "div" {
				depth--
			}
		}
	}
}

// isPlaceholder отличает заглушку от обычного div с тем же классом: у заглушки
// всегда есть data-src или data-original-attributes.
func isPlaceholder(attrs map[string]string) bool {
	if !hasClass(attrs["class"], PlaceholderClass) {
		return false
	}
	_, hasSrc := attrs[attrSrc]
	_, hasOriginal := attrs[attrOriginal]
	return hasSrc || hasOriginal
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return bytes.Contains(bytes.ToLower([]byte(s)), []byte(substr))
}
