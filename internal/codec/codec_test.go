package codec

import (
	"math/rand"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/gcbaptista/go-article-discovery/model"
)

func state(search string, tags []string, by model.SortBy, order model.SortOrder) model.FilterState {
	if tags == nil {
		tags = []string{}
	}
	return model.FilterState{SearchQuery: search, SelectedTags: tags, SortBy: by, SortOrder: order}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		state model.FilterState
		want  string
	}{
		{
			name:  "default state encodes to nothing",
			state: model.DefaultFilterState(),
			want:  "",
		},
		{
			name:  "search and tag",
			state: state("next", []string{"Web"}, model.SortByDate, model.SortOrderDesc),
			want:  "search=next&tag=Web",
		},
		{
			name:  "search is trimmed",
			state: state("  next  ", nil, model.SortByDate, model.SortOrderDesc),
			want:  "search=next",
		},
		{
			name:  "whitespace-only search is omitted",
			state: state("   ", nil, model.SortByDate, model.SortOrderDesc),
			want:  "",
		},
		{
			name:  "tags repeat in selection order",
			state: state("", []string{"web", "Go", "debugging"}, model.SortByDate, model.SortOrderDesc),
			want:  "tag=web&tag=Go&tag=debugging",
		},
		{
			name:  "non-default sort and order",
			state: state("", nil, model.SortByTitle, model.SortOrderAsc),
			want:  "sort=title&order=asc",
		},
		{
			name:  "default sort with non-default order",
			state: state("", nil, model.SortByDate, model.SortOrderAsc),
			want:  "order=asc",
		},
		{
			name:  "special characters are escaped",
			state: state("c++ & go", []string{"a=b"}, model.SortByDate, model.SortOrderDesc),
			want:  "search=c%2B%2B+%26+go&tag=a%3Db",
		},
		{
			name:  "all parameters in fixed order",
			state: state("rust", []string{"lang"}, model.SortByTitle, model.SortOrderAsc),
			want:  "search=rust&tag=lang&sort=title&order=asc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.state))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.FilterState
	}{
		{
			name: "empty string",
			raw:  "",
			want: model.DefaultFilterState(),
		},
		{
			name: "leading question mark",
			raw:  "?search=next&tag=Web",
			want: state("next", []string{"Web"}, model.SortByDate, model.SortOrderDesc),
		},
		{
			name: "unknown sort and order fall back to defaults",
			raw:  "sort=popularity&order=sideways",
			want: model.DefaultFilterState(),
		},
		{
			name: "sort and order are case-insensitive",
			raw:  "sort=TITLE&order=Asc",
			want: state("", nil, model.SortByTitle, model.SortOrderAsc),
		},
		{
			name: "empty search is absent search",
			raw:  "search=%20%20",
			want: model.DefaultFilterState(),
		},
		{
			name: "empty and duplicate tags are dropped",
			raw:  "tag=&tag=go&tag=web&tag=go",
			want: state("", []string{"go", "web"}, model.SortByDate, model.SortOrderDesc),
		},
		{
			name: "unknown parameters are ignored",
			raw:  "utm_source=feed&page=2&tag=go",
			want: state("", []string{"go"}, model.SortByDate, model.SortOrderDesc),
		},
		{
			name: "malformed escape keeps the valid pairs",
			raw:  "search=%zz&tag=go",
			want: state("", []string{"go"}, model.SortByDate, model.SortOrderDesc),
		},
		{
			name: "fragment is ignored",
			raw:  "tag=go#top",
			want: state("", []string{"go"}, model.SortByDate, model.SortOrderDesc),
		},
		{
			name: "plus decodes to space",
			raw:  "search=next+js",
			want: state("next js", nil, model.SortByDate, model.SortOrderDesc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestDecodeValues(t *testing.T) {
	values := url.Values{
		ParamSearch: {" next "},
		ParamTag:    {"Web", "debugging"},
		ParamSort:   {"title"},
	}
	got := DecodeValues(values)
	want := state("next", []string{"Web", "debugging"}, model.SortByTitle, model.SortOrderDesc)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeValues() mismatch (-want +got):\n%s", diff)
	}
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/articles", URL("/articles", model.DefaultFilterState()))
	assert.Equal(t, "/articles?tag=go", URL("/articles", state("", []string{"go"}, model.SortByDate, model.SortOrderDesc)))
}

func TestRoundTripExample(t *testing.T) {
	original := state("next", []string{"Web"}, model.SortByDate, model.SortOrderDesc)
	encoded := Encode(original)
	assert.Contains(t, encoded, "search=next&tag=Web")
	if diff := cmp.Diff(original, Decode(encoded)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// randomState builds states of the shape the controller produces: trimmed
// search, unique trimmed non-empty tags, valid sort settings.
func randomState(r *rand.Rand) model.FilterState {
	alphabet := []rune("abcXYZ019 &=+%#?/.-_éü日本")
	word := func(max int) string {
		n := r.Intn(max) + 1
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteRune(alphabet[r.Intn(len(alphabet))])
		}
		return b.String()
	}

	s := model.DefaultFilterState()
	if r.Intn(2) == 0 {
		s.SearchQuery = strings.TrimSpace(word(12))
	}
	seen := map[string]bool{}
	for i, n := 0, r.Intn(4); i < n; i++ {
		tag := strings.TrimSpace(word(8))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		s.SelectedTags = append(s.SelectedTags, tag)
	}
	if r.Intn(2) == 0 {
		s.SortBy = model.SortByTitle
	}
	if r.Intn(2) == 0 {
		s.SortOrder = model.SortOrderAsc
	}
	return s
}

func TestRoundTripProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		original := randomState(r)
		encoded := Encode(original)
		decoded := Decode(encoded)
		if diff := cmp.Diff(original, decoded, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round trip %d via %q mismatch (-want +got):\n%s", i, encoded, diff)
		}
		// Encoding is canonical: re-encoding the decoded state is stable.
		assert.Equal(t, encoded, Encode(decoded))
	}
}
