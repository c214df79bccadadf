// Package roster parses bulk contestant imports.
package roster

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/duelwall/internal/domain/model"
)

// ParseCSV reads "name,image_url" rows. Blank lines are ignored and do not
// count towards row numbers; a leading header row is skipped. The URL is
// everything after the first comma, so it may itself contain commas.
// Rejected rows are reported as "Row N: ..." warnings, never as errors.
func ParseCSV(text string) (entries []model.NewContestant, warnings []string) {
	seen := make(map[string]struct{})
	row := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row++
		if row == 1 && isHeader(line) {
			continue
		}

		name, ref, _ := strings.Cut(line, ",")
		name, ref = strings.TrimSpace(name), strings.TrimSpace(ref)
		if name == "" || ref == "" {
			warnings = append(warnings, fmt.Sprintf("Row %d: expected \"name,image_url\"", row))
			continue
		}
		if !hasHTTPScheme(ref) {
			warnings = append(warnings, fmt.Sprintf("Row %d: image URL must start with http(s)", row))
			continue
		}
		if u, err := url.Parse(ref); err != nil || u.Host == "" {
			warnings = append(warnings, fmt.Sprintf("Row %d: invalid image URL", row))
			continue
		}

		key := strings.ToLower(name) + "::" + ref
		if _, dup := seen[key]; dup {
			warnings = append(warnings, fmt.Sprintf("Row %d: duplicate entry skipped", row))
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, model.NewContestant{Name: name, ImageRef: ref})
	}
	return entries, warnings
}

// Validate wraps ParseCSV for callers that need at least one entry.
func Validate(text string) ([]model.NewContestant, []string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmpty
	}
	entries, warnings := ParseCSV(text)
	if len(entries) == 0 {
		return nil, warnings, ErrNoValidRows
	}
	return entries, warnings, nil
}

func isHeader(line string) bool {
	n := strings.ToLower(strings.Join(strings.Fields(line), ""))
	return n == "name,image_url" || n == "name,imageurl"
}

func hasHTTPScheme(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// ValidImageRef reports whether ref is an absolute http(s) URL with a host.
func ValidImageRef(ref string) bool {
	if !hasHTTPScheme(ref) {
		return false
	}
	u, err := url.Parse(ref)
	return err == nil && u.Host != ""
}
