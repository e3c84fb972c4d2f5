// Package codec maps a FilterState to and from the URL query string that
// makes a view of the article list shareable.
//
// Encoding omits every value equal to its default so URLs stay minimal.
// Decoding never fails: absent, empty or unparseable parameters fall back to
// their defaults. For every state reachable through the interaction controller
// Decode(Encode(s)) equals s.
package codec

import (
	"net/url"
	"strings"

	"github.com/gcbaptista/go-article-discovery/model"
)

// Query parameter names.
const (
	ParamSearch = "search"
	ParamTag    = "tag"
	ParamSort   = "sort"
	ParamOrder  = "order"
)

// Encode renders state as a query string without the leading '?'.
// Parameters appear in a fixed order: search, tag (one per selected tag, in
// selection order), sort, order. The default state encodes to "".
func Encode(state model.FilterState) string {
	parts := make([]string, 0, 3+len(state.SelectedTags))

	if search := strings.TrimSpace(state.SearchQuery); search != "" {
		parts = append(parts, pair(ParamSearch, search))
	}
	for _, tag := range normalizeTags(state.SelectedTags) {
		parts = append(parts, pair(ParamTag, tag))
	}
	if by, ok := model.ParseSortBy(string(state.SortBy)); ok && by != model.DefaultSortBy {
		parts = append(parts, pair(ParamSort, string(by)))
	}
	if order, ok := model.ParseSortOrder(string(state.SortOrder)); ok && order != model.DefaultSortOrder {
		parts = append(parts, pair(ParamOrder, string(order)))
	}

	return strings.Join(parts, "&")
}

// Decode parses a raw query string. A leading '?' and a trailing fragment are
// ignored, and malformed pairs are skipped.
func Decode(raw string) model.FilterState {
	raw = strings.TrimPrefix(raw, "?")
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	// ParseQuery keeps every pair it could decode even when it reports an error.
	values, _ := url.ParseQuery(raw)
	return DecodeValues(values)
}

// DecodeValues builds a FilterState from already parsed query values.
func DecodeValues(values url.Values) model.FilterState {
	state := model.DefaultFilterState()

	state.SearchQuery = strings.TrimSpace(values.Get(ParamSearch))
	state.SelectedTags = normalizeTags(values[ParamTag])
	if by, ok := model.ParseSortBy(values.Get(ParamSort)); ok {
		state.SortBy = by
	}
	if order, ok := model.ParseSortOrder(values.Get(ParamOrder)); ok {
		state.SortOrder = order
	}

	return state
}

// URL joins listPath and the encoded state. The default state yields the
// bare list path with no query string at all.
func URL(listPath string, state model.FilterState) string {
	query := Encode(state)
	if query == "" {
		return listPath
	}
	return listPath + "?" + query
}

// NormalizeTag trims a tag; an empty result means the tag is unusable.
func NormalizeTag(tag string) string {
	return strings.TrimSpace(tag)
}

// normalizeTags trims tags and drops empty and repeated ones, keeping the
// first occurrence. The result is never nil.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = NormalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func pair(key, value string) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
