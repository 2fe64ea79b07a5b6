// Package uri canonicalizes file URIs so the agent can match them to editor
// buffers by plain string equality.
package uri

import (
	"regexp"
	"strings"

	lspuri "go.lsp.dev/uri"
)

// windowsDrive matches file URIs that start with a single drive letter.
var windowsDrive = regexp.MustCompile(`^file:///([A-Za-z]):/`)

// Normalize rewrites "file:///C:/..." to "file:///c%3A/...".
// Only the drive letter and its colon change; any other input is returned
// byte for byte.
func Normalize(uri string) string {
	m := windowsDrive.FindStringSubmatchIndex(uri)
	if m == nil {
		return uri
	}

	drive := strings.ToLower(uri[m[2]:m[3]])
	// m[3] is the colon; keep everything from the following slash.
	return "file:///" + drive + "%3A" + uri[m[3]+1:]
}

// FromPath converts a platform file path to a normalized file URI.
func FromPath(path string) string {
	return Normalize(string(lspuri.File(path)))
}
