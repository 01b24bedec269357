// Package httpdate formats timestamps as RFC 1123 HTTP-dates for the
// Last-Modified header, as spec'd for the static-file engine.
package httpdate

import (
	"net/http"
	"time"
)

// Format renders t as an RFC 1123 HTTP-date in GMT, e.g.
// "Mon, 02 Jan 2006 15:04:05 GMT".
func Format(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
