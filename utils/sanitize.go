package utils

import "github.com/microcosm-cc/bluemonday"

// Shared UGC policy: keeps basic formatting in descriptions and comments
// while stripping script vectors.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user-supplied free text.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
