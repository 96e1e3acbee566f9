package config

import (
	"regexp"
	"time"

	"github.com/ncruces/go-strftime"
)

// dateTimeRe matches $datetime{<strftime layout>}. The layout is matched
// lazily so two placeholders on one line stay separate.
var dateTimeRe = regexp.MustCompile(`\$datetime\{(.*?)\}`)

// ExpandDateTime renders every $datetime{...} placeholder in s with now.
// No other placeholder syntax is recognized.
func ExpandDateTime(s string, now time.Time) string {
	return dateTimeRe.ReplaceAllStringFunc(s, func(match string) string {
		layout := dateTimeRe.FindStringSubmatch(match)[1]
		return strftime.Format(layout, now)
	})
}
