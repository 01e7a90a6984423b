package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"QuotePress/internal/domain"
	"QuotePress/internal/markup"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// IndexEntry is one line of the site's article list.
type IndexEntry struct {
	Date      string
	Title     string
	Link      string
	SourceURL string
}

type articleView struct {
	SiteTitle  string
	HomeLink   string
	Title      string
	Date       string
	SourceURL  string
	Body       template.HTML
	References template.HTML
}

type indexView struct {
	SiteTitle string
	Entries   []IndexEntry
}

// RenderArticle produces the standalone page for one article. homeLink points back at the index.
func RenderArticle(siteTitle, homeLink, date string, article domain.ComposedArticle, item domain.CandidateItem) ([]byte, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "article.html", articleView{
		SiteTitle:  siteTitle,
		HomeLink:   homeLink,
		Title:      article.Title,
		Date:       date,
		SourceURL:  item.URL,
		Body:       template.HTML(markup.ToHTML(article.Body)),
		References: template.HTML(markup.ReferencesHTML(article.References)),
	})
	if err != nil {
		return nil, fmt.Errorf("render article: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderIndex produces the index page listing entries in the given order.
func RenderIndex(siteTitle string, entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", indexView{SiteTitle: siteTitle, Entries: entries}); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseIndex reads the entries of an existing index page.
func ParseIndex(content []byte) ([]IndexEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	var entries []IndexEntry
	doc.Find("ul#articles > li").Each(func(_ int, li *goquery.Selection) {
		post := li.Find("a.post").First()
		link, ok := post.Attr("href")
		if !ok || link == "" {
			return
		}

		stamp := li.Find("time").First()
		date, ok := stamp.Attr("datetime")
		if !ok || date == "" {
			date = strings.TrimSpace(stamp.Text())
		}
		source, _ := li.Find("a.source").First().Attr("href")

		entries = append(entries, IndexEntry{
			Date:      date,
			Title:     strings.TrimSpace(post.Text()),
			Link:      link,
			SourceURL: source,
		})
	})
	return entries, nil
}

// Prepend puts entry first and drops any older entry with the same link.
func Prepend(entries []IndexEntry, entry IndexEntry) []IndexEntry {
	out := make([]IndexEntry, 0, len(entries)+1)
	out = append(out, entry)
	for _, e := range entries {
		if e.Link != entry.Link {
			out = append(out, e)
		}
	}
	return out
}
