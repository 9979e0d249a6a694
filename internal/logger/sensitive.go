// sensitive.go
package logger

import (
	"regexp"
	"strings"
)

// sensitiveDataPatterns match secrets embedded in free-form strings.
var sensitiveDataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),
	regexp.MustCompile(`(whsec_)([A-Za-z0-9+/=]+)`),
	regexp.MustCompile(`(?i)((api|access|auth|token|secret|key|passw(or)?d)[0-9a-z\-_\.]*[\s:=]+)([^;,\s]{5,})`),
}

var emailPattern = regexp.MustCompile(`([A-Za-z0-9._%+\-])[A-Za-z0-9._%+\-]*(@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

// sensitiveKeywords mark field keys whose values are never logged.
var sensitiveKeywords = []string{
	"password", "secret", "token", "api_key", "apikey", "authorization", "cookie", "signature",
}

// RedactSensitiveData replaces secrets in input with "[REDACTED]".
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range sensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "${1}[REDACTED]")
	}
	return input
}

// MaskEmail keeps the first character of the local part and the domain: j***@example.com.
func MaskEmail(input string) string {
	return emailPattern.ReplaceAllString(input, "${1}***${2}")
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// redactField applies key-based and pattern-based redaction to string fields.
func redactField(f Field) Field {
	s, ok := f.Value.(string)
	if !ok || s == "" {
		return f
	}
	if isSensitiveKey(f.Key) {
		return Field{Key: f.Key, Value: "[REDACTED]"}
	}
	return Field{Key: f.Key, Value: MaskEmail(RedactSensitiveData(s))}
}
