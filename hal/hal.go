package hal

import (
	"github.com/gedex/inflector"
	jsoniter "github.com/json-iterator/go"
)

// MediaType is the content type of every HAL response.
const MediaType = "application/json+hal"

var json = jsoniter.ConfigFastest

// Link is a single hypermedia link.
type Link struct {
	Href string `json:"href"`
}

// Links holds the links of a representation. Only self links are rendered.
type Links struct {
	Self Link `json:"self"`
}

// SelfLinks builds the links of a representation addressed by href.
func SelfLinks(href string) Links {
	return Links{Self: Link{Href: href}}
}

// Collection is the envelope of a list of representations.
type Collection[T any] struct {
	Count    int            `json:"count"`
	Total    int            `json:"total"`
	Embedded map[string][]T `json:"_embedded"`
	Links    Links          `json:"_links"`
}

// NewCollection embeds items under the plural of resourceName.
// Count and total both equal the number of items, a nil slice renders as an empty array.
func NewCollection[T any](resourceName string, items []T, selfHref string) Collection[T] {
	if items == nil {
		items = make([]T, 0)
	}

	return Collection[T]{
		Count:    len(items),
		Total:    len(items),
		Embedded: map[string][]T{EmbeddedKey(resourceName): items},
		Links:    SelfLinks(selfHref),
	}
}

// EmbeddedKey returns the key a collection of resourceName is embedded under.
func EmbeddedKey(resourceName string) string {
	return inflector.Pluralize(resourceName)
}

// Marshal encodes a representation or collection.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a representation or collection.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
