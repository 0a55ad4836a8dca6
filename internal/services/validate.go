package services

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"speakerhub/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func checkLength(v *domain.ValidationError, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0 && min > 0:
		v.Add(field, "is required")
	case n < min:
		v.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case max > 0 && n > max:
		v.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func checkEmail(v *domain.ValidationError, field, value string, required bool) {
	if value == "" {
		if required {
			v.Add(field, "is required")
		}
		return
	}
	if utf8.RuneCountInString(value) > domain.EmailMaxLen {
		v.Add(field, fmt.Sprintf("must be at most %d characters", domain.EmailMaxLen))
		return
	}
	if !emailRegexp.MatchString(value) {
		v.Add(field, "must be a valid email address")
	}
}

// checkHTTPURL accepts an empty value or an absolute http(s) URL.
func checkHTTPURL(v *domain.ValidationError, field, value string) {
	if value == "" {
		return
	}
	if !isHTTPURL(value) {
		v.Add(field, "must be a valid http or https URL")
	}
}

func isHTTPURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
