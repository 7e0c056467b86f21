package render

import (
	"regexp"
	"strings"
)

// Obfuscation styles seen in the wild: "name dot tld at host dot tld",
// the bracketed "[at]" / "[dot]" form, and a bare "[at]" join.
var emailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[a-zA-Z0-9_-]+( dot [a-zA-Z0-9_-]+)? at [a-zA-Z0-9_-]+ dot [a-zA-Z0-9_-]+`),
	regexp.MustCompile(`[a-zA-Z0-9_-]+( ?\[dot\] ?[a-zA-Z0-9_-]+)? ?\[at\] ?[a-zA-Z0-9_-]+ ?\[dot\] ?[a-zA-Z0-9_-]+`),
	regexp.MustCompile(`[a-zA-Z0-9_.-]+\s?\[at\]\s?[a-zA-Z0-9_.-]+`),
}

var emailReplacer = strings.NewReplacer(
	" dot ", ".",
	" at ", "@",
	" [dot] ", ".",
	" [at] ", "@",
	"[dot]", ".",
	"[at]", "@",
)

// ResolveEmail scans text for an obfuscated email address and, when one is
// found, appends the recovered address on a new line. Text without a
// recognizable pattern is returned unchanged.
func ResolveEmail(text string) string {
	for _, pattern := range emailPatterns {
		obfuscated := pattern.FindString(text)
		if obfuscated == "" {
			continue
		}
		email := emailReplacer.Replace(obfuscated)
		return text + "\n🪄 *Deobfuscated email:* " + email
	}
	return text
}
