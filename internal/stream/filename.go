package stream

import "strings"

// DestinationName returns the part of an object key after its last '/'.
// A key ending in '/' yields an empty name; callers must reject it.
func DestinationName(key string) string {
	return key[strings.LastIndex(key, "/")+1:]
}
