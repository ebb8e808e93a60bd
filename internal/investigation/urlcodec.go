package investigation

import (
	"net/url"
	"strconv"
)

// LocationPath is the host route investigations live under. The path and
// the parameter names below form the stable share-link format: old links
// must keep decoding, so parameters are only ever added, never renamed.
const LocationPath = "/investigation"

const (
	paramKind     = "kind"
	paramID       = "id"
	paramCategory = "category"
	paramMonth    = "month"
	paramYear     = "year"
	paramFrom     = "from"
	paramTo       = "to"
)

// EncodeLocation serializes a context into a shareable location string.
// Only scope fields that are present are written; absent fields are omitted
// entirely rather than encoded as empty values.
func EncodeLocation(c Context) string {
	values := url.Values{}
	values.Set(paramKind, string(c.Kind))
	values.Set(paramID, c.ID)
	if c.Scope.Category != "" {
		values.Set(paramCategory, c.Scope.Category)
	}
	if c.Scope.Month != "" {
		values.Set(paramMonth, c.Scope.Month)
	}
	if c.Scope.Year != 0 {
		values.Set(paramYear, strconv.Itoa(c.Scope.Year))
	}
	if c.Scope.DateRange != nil {
		if c.Scope.DateRange.From != "" {
			values.Set(paramFrom, c.Scope.DateRange.From)
		}
		if c.Scope.DateRange.To != "" {
			values.Set(paramTo, c.Scope.DateRange.To)
		}
	}
	return LocationPath + "?" + values.Encode()
}

// DecodeLocation reconstructs a start configuration from a location string.
// It returns nil when the location is not an investigation route: a
// different path, a missing kind parameter, or an unrecognized kind.
// Malformed locations are swallowed into nil rather than reported so stale
// links fall back to ordinary navigation. Unknown parameters are ignored.
func DecodeLocation(location string) *Config {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil
	}
	if parsed.Path != LocationPath {
		return nil
	}
	values := parsed.Query()
	kind := Kind(values.Get(paramKind))
	if !kind.Valid() {
		return nil
	}

	cfg := Config{
		ID:     values.Get(paramID),
		Kind:   kind,
		Source: SourceDeepLink,
	}
	cfg.Scope.Category = values.Get(paramCategory)
	cfg.Scope.Month = values.Get(paramMonth)
	if year := values.Get(paramYear); year != "" {
		if n, err := strconv.Atoi(year); err == nil {
			cfg.Scope.Year = n
		}
	}
	from, to := values.Get(paramFrom), values.Get(paramTo)
	if from != "" || to != "" {
		cfg.Scope.DateRange = &DateRange{From: from, To: to}
	}
	return &cfg
}
