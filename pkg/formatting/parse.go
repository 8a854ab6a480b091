package formatting

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/veldt-labs/arbiter/pkg/xjson"
)

// ErrParseFailed is returned when content cannot be parsed as JSON directly,
// from a markdown code fence, from the outermost brace span, or after
// mechanical repair.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// Parse attempts to unmarshal content as JSON into T.
// Direct parsing is tried first, then extraction from a markdown code fence,
// then the outermost brace span, and finally a mechanical repair of the
// closest candidate. Returns ErrParseFailed if every attempt fails.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	if err := xjson.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	candidate := content
	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		candidate = strings.TrimSpace(matches[1])
		if err := xjson.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
	}

	if span := braceSpan(candidate); span != "" {
		if err := xjson.Unmarshal([]byte(span), &result); err == nil {
			return result, nil
		}
		candidate = span
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
	}
	if err := xjson.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
	}

	return result, nil
}

// braceSpan returns the outermost {...} span of s, or "" when s contains no
// complete object.
func braceSpan(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
