package utils

import "github.com/microcosm-cc/bluemonday"

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all markup from user-supplied catalog text before it is
// stored or echoed back.
func Sanitize(input string) string {
	return strictPolicy.Sanitize(input)
}
