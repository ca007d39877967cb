// Package pathcodec converts between the MPD "file" string and the typed
// chain of Spotify resource ids it encodes.
package pathcodec

import "strings"

// ItemType identifies the kind of Spotify resource a path segment names.
type ItemType int

const (
	Track ItemType = iota
	Album
	Show
	Episode
	Artist
)

var itemTypeNames = map[ItemType]string{
	Track:   "track",
	Album:   "album",
	Show:    "show",
	Episode: "episode",
	Artist:  "artist",
}

var itemTypeValues = map[string]ItemType{
	"track":   Track,
	"album":   Album,
	"show":    Show,
	"episode": Episode,
	"artist":  Artist,
}

func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Item is one (type, id) pair in a Path, ordered outermost first.
type Item struct {
	Type ItemType
	ID   string
}

// Path is the typed representation of an MPD "file" string. An empty Path
// is what Parse returns for the bare "internal/" root, and String renders it
// as "internal".
type Path struct {
	Items []Item
}

const prefix = "internal/"

// String renders a Path back into its MPD wire form: internal/<type>/<id>/<type>/<id>...
func (p Path) String() string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, item := range p.Items {
		b.WriteString(item.Type.String())
		b.WriteString("/")
		b.WriteString(item.ID)
		b.WriteString("/")
	}
	return strings.TrimSuffix(b.String(), "/")
}

// Parse decodes an MPD "file" string into a Path. Segments are consumed in
// (type, id) pairs; a type segment with no following id segment terminates
// the sequence early rather than erroring, matching the upstream codec's
// tolerant behavior for truncated paths.
func Parse(s string) (Path, bool) {
	if !strings.HasPrefix(s, prefix) {
		return Path{}, false
	}
	rest := strings.TrimPrefix(s, prefix)
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return Path{}, true
	}
	segments := strings.Split(rest, "/")

	var items []Item
	for i := 0; i+1 < len(segments)+1; i += 2 {
		if i >= len(segments) {
			break
		}
		typ, ok := itemTypeValues[segments[i]]
		if !ok {
			return Path{}, false
		}
		if i+1 >= len(segments) {
			// Trailing type with no id: stop here, matching the
			// upstream codec's truncation behavior.
			break
		}
		items = append(items, Item{Type: typ, ID: segments[i+1]})
	}
	return Path{Items: items}, true
}

// Innermost returns the last item appended to the path, i.e. the most
// specific resource the path names.
func (p Path) Innermost() (Item, bool) {
	if len(p.Items) == 0 {
		return Item{}, false
	}
	return p.Items[len(p.Items)-1], true
}

// FindFirst returns the innermost item in the path matching any of the given
// types, searching innermost-to-outermost and returning on first hit. This
// mirrors how the artwork handler resolves an album/show/artist image by
// walking the chain from the leaf track outward.
func (p Path) FindFirst(types ...ItemType) (Item, bool) {
	want := make(map[ItemType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	for i := len(p.Items) - 1; i >= 0; i-- {
		if want[p.Items[i].Type] {
			return p.Items[i], true
		}
	}
	return Item{}, false
}
