package search

import (
	"net/url"
	"strings"
	"time"
)

// Record is one row returned by the CPAN meta API.
//
// The API returns different field subsets per endpoint: packages rows carry
// module/version/owner/uploader/path, permission rows carry
// module/author/best_permission/owner, and author rows carry the author
// profile fields. Unset fields are zero.
type Record struct {
	Module         string `json:"module,omitempty"`
	Version        string `json:"version,omitempty"`
	Owner          string `json:"owner,omitempty"`
	Uploader       string `json:"uploader,omitempty"`
	Path           string `json:"path,omitempty"`
	Author         string `json:"author,omitempty"`
	BestPermission string `json:"best_permission,omitempty"`
	Fullname       string `json:"fullname,omitempty"`
	ASCIIName      string `json:"asciiname,omitempty"`
	Email          string `json:"email,omitempty"`
	Homepage       string `json:"homepage,omitempty"`
	Introduced     *int64 `json:"introduced,omitempty"` // epoch seconds
	HasCPANDir     bool   `json:"has_cpandir,omitempty"`
}

// Results is the output of one completed lookup.
type Results struct {
	Records []Record `json:"records"`

	// Freshness is the server-reported generation time of Records.
	// Nil for API versions that do not report it.
	Freshness *time.Time `json:"freshness,omitempty"`
}

// Len returns the number of records; nil-safe.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// FreshnessFromEpoch converts epoch seconds to a freshness timestamp.
// Zero means "not reported" and yields nil.
func FreshnessFromEpoch(epoch int64) *time.Time {
	if epoch == 0 {
		return nil
	}
	t := time.Unix(epoch, 0)
	return &t
}

// Permission names keyed by lowercase best_permission code.
var permissionNames = map[string]string{
	"m": "modulelist",
	"f": "first-come",
	"a": "admin",
	"c": "co-maint",
}

// PermissionName maps a best_permission code to its display name.
// Codes are case-insensitive; unknown codes map to "".
func PermissionName(code string) string {
	return permissionNames[strings.ToLower(code)]
}

const (
	metacpanPod    = "https://metacpan.org/pod/"
	metacpanAuthor = "https://metacpan.org/author/"
	cpanMirror     = "https://cpan.metacpan.org"
)

// ModuleURL links a module name to its documentation.
func ModuleURL(module string) string {
	return metacpanPod + pathEscape(module)
}

// AuthorURL links an author id to its profile.
func AuthorURL(author string) string {
	return metacpanAuthor + url.PathEscape(author)
}

// ReleaseURL links a distribution path (e.g. "E/ET/ETHER/Moose-2.2206.tar.gz").
func ReleaseURL(path string) string {
	return cpanMirror + "/authors/id/" + pathEscape(path)
}

// CPANDir returns the author directory path, e.g. "/authors/id/D/DB/DBOOK".
// It returns "" for an empty author id.
func CPANDir(author string) string {
	if author == "" {
		return ""
	}
	first := firstRunes(author, 1)
	second := firstRunes(author, 2)
	return "/authors/id/" + first + "/" + second + "/" + author
}

// CPANDirURL links an author directory on the CPAN mirror.
func CPANDirURL(author string) string {
	dir := CPANDir(author)
	if dir == "" {
		return ""
	}
	return cpanMirror + pathEscape(dir)
}

// Censored is the literal email value the API uses for hidden addresses.
const Censored = "CENSORED"

// Contact returns the link target for an email value. A censored or empty
// address has no target and is shown as-is.
func Contact(email string) string {
	if email == "" || email == Censored {
		return ""
	}
	return "mailto:" + email
}

// Introduced formats an introduced epoch as a UTC date string, or "" if unset.
func Introduced(epoch *int64) string {
	if epoch == nil {
		return ""
	}
	return time.Unix(*epoch, 0).UTC().Format(time.RFC1123)
}

// pathEscape escapes each segment of a slash-separated path, keeping the
// separators.
func pathEscape(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
