package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

const redacted = "<redacted>"

var redactedHeaders = map[string]bool{
	"Cookie":        true,
	"Set-Cookie":    true,
	"X-Csrftoken":   true,
	"Authorization": true,
}

// Redacted reports whether the values of the canonical header name must not
// be written anywhere.
func Redacted(header string) bool {
	return redactedHeaders[header]
}

// HeaderValues returns the values of header, replaced by a placeholder
// when the header is redacted.
func HeaderValues(headers http.Header, header string) []string {
	values := headers[header]
	if !Redacted(header) {
		return values
	}
	out := make([]string, len(values))
	for i := range out {
		out[i] = redacted
	}
	return out
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range HeaderValues(headers, k) {
			lines = append(lines, k+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

// RequestBody reads the body of req without consuming it. Bodies posted to
// the login page carry credentials and are redacted.
func RequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	if strings.HasPrefix(req.URL.Path, "/login") && req.Method == http.MethodPost {
		return redacted
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	// resty hands out a nil reader for requests without a body
	if body == nil {
		return ""
	}
	defer body.Close()
	contents, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(contents)
}

// FormatExchange renders a request and its response as plain text, in the
// shape of a raw http message.
func FormatExchange(res *resty.Response) string {
	var out strings.Builder
	section := func(title string, lines ...string) {
		fmt.Fprintf(&out, "---- %s ----\n\n", title)
		for _, l := range lines {
			out.WriteString(l)
			out.WriteString("\n\n")
		}
	}

	req := res.Request
	var reqHeaders, reqBody string
	if req.RawRequest != nil {
		reqHeaders = formatHeaders(req.RawRequest.Header)
		reqBody = RequestBody(req.RawRequest)
	}
	section("REQUEST", req.Method+" "+req.URL, reqHeaders, reqBody)

	finalUrl := req.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}
	section(
		"RESPONSE",
		fmt.Sprintf("%d %s", res.StatusCode(), finalUrl),
		formatHeaders(res.Header()),
		res.String(),
	)
	return strings.TrimSuffix(out.String(), "\n\n")
}
