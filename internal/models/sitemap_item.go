package models

import (
	"strings"
	"time"
)

// ChangeFrequency is the <changefreq> value of a sitemap entry.
type ChangeFrequency string

const (
	ChangeAlways  ChangeFrequency = "always"
	ChangeHourly  ChangeFrequency = "hourly"
	ChangeDaily   ChangeFrequency = "daily"
	ChangeWeekly  ChangeFrequency = "weekly"
	ChangeMonthly ChangeFrequency = "monthly"
	ChangeYearly  ChangeFrequency = "yearly"
	ChangeNever   ChangeFrequency = "never"
)

var changeFrequencies = map[ChangeFrequency]struct{}{
	ChangeAlways:  {},
	ChangeHourly:  {},
	ChangeDaily:   {},
	ChangeWeekly:  {},
	ChangeMonthly: {},
	ChangeYearly:  {},
	ChangeNever:   {},
}

// ParseChangeFrequency lowercases s and reports whether it is a legal value.
func ParseChangeFrequency(s string) (ChangeFrequency, bool) {
	freq := ChangeFrequency(strings.ToLower(strings.TrimSpace(s)))
	_, ok := changeFrequencies[freq]
	return freq, ok
}

// Payload is the parameter set an item's URL was generated from.
type Payload map[string]any

// Clone returns a shallow copy; a nil payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type SitemapItemAlternate struct {
	Href     string `json:"href"`
	HrefLang string `json:"hreflang"`
}

// SitemapItem is one <url> entry of the sitemap.
type SitemapItem struct {
	Location         string                 `json:"loc"`
	Priority         *float64               `json:"priority,omitempty"`
	ChangeFrequency  ChangeFrequency        `json:"changefreq,omitempty"`
	ModificationDate *time.Time             `json:"lastmod,omitempty"`
	Payload          Payload                `json:"payload"`
	Alternates       []SitemapItemAlternate `json:"alternates"`
}

// NewSitemapItem returns an item for loc with an empty payload and no alternates.
func NewSitemapItem(loc string) *SitemapItem {
	return &SitemapItem{
		Location:   loc,
		Payload:    Payload{},
		Alternates: []SitemapItemAlternate{},
	}
}

// SetChangeFrequency stores the lowercased value when it is legal and
// leaves the current value untouched otherwise.
func (i *SitemapItem) SetChangeFrequency(s string) {
	if freq, ok := ParseChangeFrequency(s); ok {
		i.ChangeFrequency = freq
	}
}

func (i *SitemapItem) SetPriority(p float64) {
	i.Priority = &p
}

func (i *SitemapItem) SetModificationDate(t time.Time) {
	i.ModificationDate = &t
}

func (i *SitemapItem) HasAlternates() bool {
	return len(i.Alternates) > 0
}
