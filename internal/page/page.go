// Package page wraps an already-rendered DOM snapshot for the extraction
// layers. The engine never navigates; the snapshot is handed in by the
// browser-automation collaborator (or read from disk in the CLI).
package page

import (
	"io"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

var whitespaceRE = regexp.MustCompile(`[ \t\r\f\v]+`)

// Snapshot is an immutable view of one loaded page. Layers only read it,
// so a single snapshot is safe to share across concurrent layer runs.
type Snapshot struct {
	url string
	doc *goquery.Document

	textOnce sync.Once
	text     string
}

// New parses HTML from r into a snapshot. An unreadable document is the
// one fatal error class: no layer can run without a DOM.
func New(r io.Reader, pageURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "page: parse document")
	}
	return FromDocument(doc, pageURL), nil
}

// FromDocument wraps an already-parsed goquery document.
func FromDocument(doc *goquery.Document, pageURL string) *Snapshot {
	return &Snapshot{url: pageURL, doc: doc}
}

// URL returns the resolved page URL the snapshot was loaded from.
func (s *Snapshot) URL() string { return s.url }

// Host returns the lowercased hostname of the page URL, or "".
func (s *Snapshot) Host() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Doc returns the parsed document for selector-based layers.
func (s *Snapshot) Doc() *goquery.Document { return s.doc }

// Text returns the page's visible body text with scripts, styles and
// whitespace runs stripped. Built once on first use; offsets into the
// returned string are stable, which the pattern layer relies on for
// anchor proximity.
func (s *Snapshot) Text() string {
	s.textOnce.Do(func() {
		body := s.doc.Find("body")
		if body.Length() == 0 {
			body = s.doc.Selection
		}
		clone := body.Clone()
		clone.Find("script, style, noscript, template").Remove()

		lines := strings.Split(clone.Text(), "\n")
		var b strings.Builder
		for _, line := range lines {
			line = strings.TrimSpace(whitespaceRE.ReplaceAllString(line, " "))
			if line == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line)
		}
		s.text = b.String()
	})
	return s.text
}

// ResolveURL resolves a possibly-relative reference against the page URL.
// Returns "" for unparseable references.
func (s *Snapshot) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(s.url)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// Valid reports whether the snapshot carries a usable document.
func (s *Snapshot) Valid() bool {
	return s != nil && s.doc != nil
}
