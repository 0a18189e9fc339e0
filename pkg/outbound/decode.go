package outbound

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// DecodeBody decodes body using the charset of contentType. Missing, unknown
// or UTF-8 charsets fall back to UTF-8 with invalid bytes replaced by U+FFFD.
func DecodeBody(contentType string, body []byte) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label := strings.ToLower(strings.TrimSpace(params["charset"]))
		if label != "" && label != "utf-8" && label != "utf8" {
			if enc, err := htmlindex.Get(label); err == nil {
				if out, err := enc.NewDecoder().Bytes(body); err == nil {
					return strings.ToValidUTF8(string(out), "\uFFFD")
				}
			}
		}
	}
	return strings.ToValidUTF8(string(body), "\uFFFD")
}
