package codec

import "strings"

// DefaultName is the codec used by routes that don't name one.
const DefaultName = "json"

var registry = map[string]Codec{
	DefaultName: JSONStrict,
}

// Lookup returns the codec registered under name (case-insensitive).
func Lookup(name string) (Codec, bool) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
