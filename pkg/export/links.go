package export

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// UTMParams are appended to outgoing links
type UTMParams struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Content  string `json:"utm_content,omitempty"`
	Term     string `json:"utm_term,omitempty"`
}

// IsZero reports whether no parameter is set
func (p UTMParams) IsZero() bool {
	return p == UTMParams{}
}

func (p UTMParams) values() [][2]string {
	return [][2]string{
		{"utm_source", p.Source},
		{"utm_medium", p.Medium},
		{"utm_campaign", p.Campaign},
		{"utm_content", p.Content},
		{"utm_term", p.Term},
	}
}

// Link is a URL referenced by a rendered email
type Link struct {
	Tag  string `json:"tag"`
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// Links lists the anchors and images of an HTML document in document order
func Links(htmlString string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlString))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	links := []Link{}
	doc.Find("a[href], img[src]").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		attr := "href"
		if tag == "img" {
			attr = "src"
		}
		value, _ := s.Attr(attr)
		if value == "" {
			return
		}
		links = append(links, Link{
			Tag:  tag,
			URL:  value,
			Text: strings.TrimSpace(s.Text()),
		})
	})

	return links, nil
}

// ApplyUTM appends UTM parameters to every http(s) anchor of an HTML
// document. Parameters already present on a link are kept.
func ApplyUTM(htmlString string, params UTMParams) (string, error) {
	if params.IsZero() {
		return htmlString, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlString))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if tracked, ok := addUTM(href, params); ok {
			s.SetAttr("href", tracked)
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return out, nil
}

func addUTM(rawURL string, params UTMParams) (string, bool) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return rawURL, false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false
	}

	q := u.Query()
	changed := false
	for _, kv := range params.values() {
		if kv[1] == "" || q.Get(kv[0]) != "" {
			continue
		}
		q.Set(kv[0], kv[1])
		changed = true
	}
	if !changed {
		return rawURL, false
	}

	u.RawQuery = q.Encode()
	return u.String(), true
}
