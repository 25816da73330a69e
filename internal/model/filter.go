package model

import "strings"

// AlbumNameSeparator separates album names given on the command line.
const AlbumNameSeparator = "$"

// Filter selects which albums are downloaded.
//
// A Filter matches either a set of exact album names or a URL path prefix
// (the mask). Names take priority: when any name is given the mask is ignored.
// A Filter with neither keeps every album.
type Filter struct {
	names map[string]struct{}
	mask  string
}

// NewFilter creates a Filter from album names and a path mask.
// Names are trimmed and empty names are dropped.
func NewFilter(names []string, mask string) *Filter {
	f := &Filter{names: make(map[string]struct{})}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			f.names[n] = struct{}{}
		}
	}
	if len(f.names) == 0 {
		f.mask = mask
	}
	return f
}

// ParseAlbumNames splits a "$"-delimited list of album names.
//
// Example:
//
//	ParseAlbumNames("Title 1$ Title 2 ") // Returns ["Title 1", "Title 2"]
func ParseAlbumNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(s, AlbumNameSeparator) {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// IsEmpty reports whether the filter keeps every album.
func (f *Filter) IsEmpty() bool {
	return len(f.names) == 0 && f.mask == ""
}

// Match reports whether album passes the filter.
func (f *Filter) Match(album *Album) bool {
	if len(f.names) > 0 {
		_, ok := f.names[strings.TrimSpace(album.Name)]
		return ok
	}
	if f.mask != "" {
		return strings.HasPrefix(album.URLPath, f.mask)
	}
	return true
}

// Apply returns the albums that pass the filter, in their original order.
func (f *Filter) Apply(albums []*Album) []*Album {
	kept := make([]*Album, 0, len(albums))
	for _, a := range albums {
		if f.Match(a) {
			kept = append(kept, a)
		}
	}
	return kept
}
