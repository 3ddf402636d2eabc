// Package render serializes sitemap items into the sitemap protocol XML.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/romangod6/route-sitemap/internal/models"
)

const ContentType = "text/xml"

// Sitemap maps items onto the <urlset> document. The xhtml namespace is only
// declared when at least one item carries alternates.
func Sitemap(items []*models.SitemapItem) models.Sitemap {
	doc := models.Sitemap{
		Xmlns: models.SitemapNamespace,
		URLs:  make([]models.URL, 0, len(items)),
	}

	for _, item := range items {
		u := models.URL{
			Loc:        item.Location,
			ChangeFreq: string(item.ChangeFrequency),
		}
		if item.Priority != nil {
			u.Priority = FormatPriority(*item.Priority)
		}
		if item.ModificationDate != nil {
			u.LastMod = item.ModificationDate.Format(time.RFC3339)
		}
		for _, alt := range item.Alternates {
			u.Links = append(u.Links, models.XHTMLLink{Rel: "alternate", HrefLang: alt.HrefLang, Href: alt.Href})
		}
		if item.HasAlternates() {
			doc.XmlnsXHTML = models.XHTMLNamespace
		}
		doc.URLs = append(doc.URLs, u)
	}

	return doc
}

// Write encodes items as an indented XML document with declaration.
func Write(w io.Writer, items []*models.SitemapItem) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(Sitemap(items)); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Bytes renders items into memory.
func Bytes(items []*models.SitemapItem) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatPriority prints p with at least one decimal: 1 -> "1.0", 0.85 -> "0.85".
// NaN and infinities are printed as strconv spells them.
func FormatPriority(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return strconv.FormatFloat(p, 'f', -1, 64)
	}
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
