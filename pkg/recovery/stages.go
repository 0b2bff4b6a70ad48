package recovery

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// FieldName is the one field whose value is treated as untrusted source text.
	FieldName = "canvasCode"

	// MaxFieldLength is the rune limit applied to a repaired field value.
	MaxFieldLength = 2000

	// TruncationMarker is appended to a repaired value cut at MaxFieldLength.
	TruncationMarker = "\n// Canvas code truncated for JSON safety"

	// ExcisedPlaceholder replaces the field value in the last stage.
	ExcisedPlaceholder = "// Canvas code removed for JSON safety"
)

var (
	// A fence opens at the start of a line, so backticks inside a JSON
	// string value never count.
	fencePattern         = regexp.MustCompile("(?s)(?m:^)[ \\t]*```(?:json|JSON)?\\s*(.*?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
	controlCharPattern   = regexp.MustCompile(`[\x00-\x1f\x7f]`)

	// closingPattern matches what may follow the closing quote of a field
	// value: the end of the object, or a comma and the next member name.
	closingPattern = regexp.MustCompile(`^\s*(?:[}\]]|,\s*"[A-Za-z_$][A-Za-z0-9_$]*"\s*:|$)`)
)

// StripFence returns the body of the first fenced code block in s, or s
// unchanged when there is none.
func StripFence(s string) string {
	m := fencePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return strings.TrimSpace(m[1])
}

// TrimToObject slices s to the range between the first '{' and the last '}',
// inclusive. Without such a pair, s is returned unchanged.
func TrimToObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}

// EscapeField rewrites the string value of every occurrence of field so it
// is a legal JSON string: backslashes and quotes are escaped, line breaks
// become \n escapes, other control characters are dropped, and values
// longer than MaxFieldLength runes are cut and marked. Text outside the
// value spans is never modified.
func EscapeField(s, field string) string {
	return rewriteField(s, field, func(value string) string {
		return encodeValue(truncate(cleanValue(decodeValue(value))))
	})
}

// RepairStructure removes trailing commas before a closing brace or bracket
// and strips control characters anywhere in s.
func RepairStructure(s string) string {
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	return controlCharPattern.ReplaceAllString(s, "")
}

// ExciseField replaces the value of every occurrence of field with
// ExcisedPlaceholder, discarding the original content.
func ExciseField(s, field string) string {
	return rewriteField(s, field, func(string) string {
		return ExcisedPlaceholder
	})
}

// rewriteField applies fn to each value span of field and splices the
// results back into s.
func rewriteField(s, field string, fn func(value string) string) string {
	keyPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"`)

	var b strings.Builder
	cursor := 0
	for cursor < len(s) {
		loc := keyPattern.FindStringIndex(s[cursor:])
		if loc == nil {
			break
		}
		valueStart := cursor + loc[1]
		valueEnd := findValueEnd(s, valueStart)
		if valueEnd < 0 {
			break
		}
		b.WriteString(s[cursor:valueStart])
		b.WriteString(fn(s[valueStart:valueEnd]))
		b.WriteByte('"')
		cursor = valueEnd + 1
	}
	b.WriteString(s[cursor:])
	return b.String()
}

// findValueEnd returns the index of the quote closing the string value that
// starts at start, or -1. A quote closes the value when it is not escaped
// and is followed by the end of the object or by the next member name. When
// no quote qualifies, the first unescaped quote is used.
func findValueEnd(s string, start int) int {
	first := -1
	for i := start; i < len(s); i++ {
		if s[i] != '"' || escaped(s, start, i) {
			continue
		}
		if first < 0 {
			first = i
		}
		if closingPattern.MatchString(s[i+1:]) {
			return i
		}
	}
	return first
}

// escaped reports whether the quote at i is preceded by an odd run of
// backslashes that starts at or after lo.
func escaped(s string, lo, i int) bool {
	n := 0
	for j := i - 1; j >= lo && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// decodeValue returns the characters the span stands for. A span that is
// already a legal JSON string body is unescaped; anything else is taken
// literally.
func decodeValue(span string) string {
	var v string
	if err := json.Unmarshal([]byte(`"`+span+`"`), &v); err == nil {
		return v
	}
	return span
}

func cleanValue(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)
}

func truncate(v string) string {
	runes := []rune(v)
	if len(runes) <= MaxFieldLength {
		return v
	}
	return string(runes[:MaxFieldLength]) + TruncationMarker
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func encodeValue(v string) string {
	return valueEscaper.Replace(v)
}
