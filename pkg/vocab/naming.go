package vocab

import "strings"

// JavaScheme prefixes type URIs that name an implementation directly,
// e.g. "java:edu.example.ClassPropertyListDataGetter".
const JavaScheme = "java:"

// Namer maps a declared type URI to an implementation name.
type Namer interface {
	ImplementationName(typeURI string) string
}

// NamerFunc adapts a function to Namer.
type NamerFunc func(typeURI string) string

// ImplementationName calls f.
func (f NamerFunc) ImplementationName(typeURI string) string { return f(typeURI) }

// LocalNamer is the default naming convention. "java:" URIs yield their last
// dotted segment; any other IRI yields its local name after the last '#',
// '/' or ':'.
type LocalNamer struct{}

// ImplementationName implements Namer.
func (LocalNamer) ImplementationName(typeURI string) string {
	uri := strings.TrimSpace(typeURI)
	if rest, ok := strings.CutPrefix(uri, JavaScheme); ok {
		if i := strings.LastIndexByte(rest, '.'); i >= 0 {
			return rest[i+1:]
		}
		return rest
	}
	if i := strings.LastIndexAny(uri, "#/:"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
