package opendata

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gentcache/internal/domain/entity"
)

// articleDateLayout is the publicatiedatum format: a plain ISO calendar date.
const articleDateLayout = "2006-01-02"

// MapArticle converts a wire article into its domain form. The body text is
// every non-empty paragraph of the embedded HTML document joined by blank
// lines; the image is taken from the srcset of the first <source> tag. Both
// are optional, everything else is required.
func MapArticle(rec ArticleRecord) (*entity.Article, error) {
	if rec.Titel == "" {
		return nil, fmt.Errorf("article: missing titel: %w", entity.ErrMapping)
	}
	if rec.Nieuwsbericht == "" {
		return nil, fmt.Errorf("article %q: missing nieuwsbericht: %w", rec.Titel, entity.ErrMapping)
	}
	if rec.Publicatiedatum == "" {
		return nil, fmt.Errorf("article %q: missing publicatiedatum: %w", rec.Titel, entity.ErrMapping)
	}
	date, err := time.ParseInLocation(articleDateLayout, rec.Publicatiedatum, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("article %q: publicatiedatum %q: %w", rec.Titel, rec.Publicatiedatum, entity.ErrMapping)
	}

	content, imageURL, err := parseArticleHTML(rec.Inhoud)
	if err != nil {
		return nil, fmt.Errorf("article %q: inhoud: %w", rec.Titel, entity.ErrMapping)
	}

	return &entity.Article{
		Title:       rec.Titel,
		Date:        date,
		ReadMoreURL: rec.Nieuwsbericht,
		Content:     content,
		ImageURL:    imageURL,
	}, nil
}

// EncodeArticle rebuilds the wire form of an article. Used to construct test
// fixtures; the generated HTML round-trips through MapArticle.
func EncodeArticle(article *entity.Article) ArticleRecord {
	var html strings.Builder
	if article.ImageURL != "" {
		fmt.Fprintf(&html, `<figure><picture><source srcset="%s 1200w"/></picture></figure>`, article.ImageURL)
	}
	for _, paragraph := range strings.Split(article.Content, "\n\n") {
		if paragraph == "" {
			continue
		}
		fmt.Fprintf(&html, "<p>%s</p>", paragraph)
	}

	return ArticleRecord{
		Titel:           article.Title,
		Publicatiedatum: article.Date.UTC().Format(articleDateLayout),
		Inhoud:          html.String(),
		Nieuwsbericht:   article.ReadMoreURL,
	}
}

// parseArticleHTML extracts the body text and a representative image URL
// from the HTML document embedded in the record. An empty document yields
// empty results, not an error.
func parseArticleHTML(html string) (content, imageURL string, err error) {
	if html == "" {
		return "", "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	content = strings.Join(paragraphs, "\n\n")

	if srcset, ok := doc.Find("source").First().Attr("srcset"); ok {
		imageURL = firstSrcsetURL(srcset)
	}
	return content, imageURL, nil
}

// firstSrcsetURL returns the URL of the first srcset entry, dropping the
// width descriptor.
func firstSrcsetURL(srcset string) string {
	entry, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
