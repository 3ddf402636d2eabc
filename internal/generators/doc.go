// Package generators provides the dynamic sitemap generator capabilities:
// records from storage, payload lists declared in configuration, and
// locations imported from an upstream sitemap feed.
package generators
