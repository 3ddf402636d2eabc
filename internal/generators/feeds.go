package generators

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/romangod6/route-sitemap/internal/sitemap"
)

const (
	DefaultFeedParam     = "path"
	DefaultFeedUserAgent = "Route Sitemap Bot v1.0"
	DefaultFeedTimeout   = 30 * time.Second
)

// Feed imports the <loc> entries of an upstream sitemap as payloads, one per
// location, holding the location path under Param.
type Feed struct {
	URL       string
	Param     string
	UserAgent string
	Timeout   time.Duration
}

// NewFeeds exposes one operation per configured feed.
func NewFeeds(feeds map[string]Feed) sitemap.Operations {
	ops := make(sitemap.Operations, len(feeds))
	for name, feed := range feeds {
		feed := feed
		ops[name] = func(ctx context.Context, _ string) ([]models.Payload, error) {
			return feed.Fetch(ctx)
		}
	}
	return ops
}

// Fetch downloads the feed and returns one payload per distinct location path.
func (f Feed) Fetch(ctx context.Context) ([]models.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	param := f.Param
	if param == "" {
		param = DefaultFeedParam
	}
	userAgent := f.UserAgent
	if userAgent == "" {
		userAgent = DefaultFeedUserAgent
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFeedTimeout
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(timeout)

	var payloads []models.Payload
	seen := make(map[string]struct{})
	c.OnXML("//url/loc", func(e *colly.XMLElement) {
		loc, err := url.Parse(strings.TrimSpace(e.Text))
		if err != nil {
			return
		}
		path := strings.Trim(loc.Path, "/")
		if path == "" {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		payloads = append(payloads, models.Payload{param: path})
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("feed %s answered %d: %w", f.URL, status, err)
	})

	if err := c.Visit(f.URL); err != nil && fetchErr == nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", f.URL, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	return payloads, nil
}
