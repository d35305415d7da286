// Request descriptions for command-emission mode.
package services

import (
	"fmt"
	"net/url"
	"strings"
)

// RequestSpec is a self-contained description of an HTTP request the
// operator can execute manually.
type RequestSpec struct {
	Method  string
	URL     string
	Headers []Header
	Body    []byte
	Note    string
}

// Header is a single request header. Kept as a slice rather than a map so
// emitted commands render headers in a stable order.
type Header struct {
	Key   string
	Value string
}

// Curl renders the request as a multi-line curl command, matching the
// single-quoted -H/-d shape of hand-written shell snippets.
func (r RequestSpec) Curl() string {
	var b strings.Builder

	if r.Note != "" {
		fmt.Fprintf(&b, "# %s\n", r.Note)
	}

	if r.Method == "GET" || r.Method == "" {
		fmt.Fprintf(&b, "curl '%s'", r.URL)
	} else {
		fmt.Fprintf(&b, "curl -X %s '%s'", r.Method, r.URL)
	}

	for _, h := range r.Headers {
		fmt.Fprintf(&b, " \\\n  -H '%s: %s'", h.Key, h.Value)
	}

	if len(r.Body) > 0 {
		fmt.Fprintf(&b, " \\\n  -d '%s'", string(r.Body))
	}

	return b.String()
}

// buildURL joins a base URL, path, and query values.
func buildURL(base, path string, query url.Values) string {
	full := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}
