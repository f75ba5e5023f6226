package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxDecodeRounds bounds how many layers of entity encoding are peeled off.
const maxDecodeRounds = 8

var angles = strings.NewReplacer("<", "", ">", "")

// Sanitize strips every HTML tag from s and returns plain, trimmed text.
// Entity-encoded markup is decoded and stripped again until nothing changes,
// so "&lt;b&gt;" cannot come back out as a tag.
func Sanitize(s string) string {
	out := s
	for i := 0; ; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			break
		}
		if i == maxDecodeRounds {
			out = angles.Replace(next)
			break
		}
		out = next
	}

	return strings.TrimSpace(out)
}

// SanitizePtr sanitizes *s and turns an empty result into nil.
func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}

	clean := Sanitize(*s)
	if clean == "" {
		return nil
	}

	return &clean
}
