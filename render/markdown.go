package render

import (
	md "github.com/JohannesKaufmann/html-to-markdown"
)

// ToMarkdown converts an HTML fragment to Markdown, keeping links.
// On conversion failure the original markup is returned unchanged so a
// malformed posting still displays something.
func ToMarkdown(html string) string {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return html
	}
	return markdown
}

// Display renders stored posting markup for presentation: email
// deobfuscation first, then Markdown conversion.
func Display(html string) string {
	return ToMarkdown(ResolveEmail(html))
}
