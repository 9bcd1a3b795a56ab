package sitemap

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"bizdir/internal/domain"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []entry  `xml:"url"`
}

type entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type staticPage struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []staticPage{
	{"", "daily", "1.0"},
	{"/dashboard", "daily", "0.9"},
	{"/terms", "monthly", "0.5"},
}

// Write renders the sitemap for baseURL: the static pages followed by one
// page per business.
func Write(w io.Writer, baseURL string, businesses []domain.Business, now time.Time) error {
	baseURL = strings.TrimRight(baseURL, "/")
	today := now.UTC().Format("2006-01-02")

	set := urlSet{Xmlns: xmlns, URLs: make([]entry, 0, len(staticPages)+len(businesses))}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, entry{
			Loc:        baseURL + p.path,
			LastMod:    today,
			ChangeFreq: p.changeFreq,
			Priority:   p.priority,
		})
	}
	for _, b := range businesses {
		mod := b.UpdatedAt
		if mod.IsZero() {
			mod = b.CreatedAt
		}
		if mod.IsZero() {
			mod = now
		}
		set.URLs = append(set.URLs, entry{
			Loc:        baseURL + "/business/" + b.ID,
			LastMod:    mod.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}
