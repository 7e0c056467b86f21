package hn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadPage builds a minimal hiring-thread page around the given comment rows.
func threadPage(rows string) string {
	return `<html><body><table class="comment-tree">` + rows + `</table></body></html>`
}

func commentRow(id, indent int, user, text string) string {
	idAttr := ""
	age := `<span class="age">no link here</span>`
	if id > 0 {
		age = `<span class="age"><a href="item?id=` + itoa(id) + `">3 months ago</a></span>`
		idAttr = ` id="` + itoa(id) + `"`
	}
	return `<tr class="athing comtr"` + idAttr + `><td><table><tr>` +
		`<td indent="` + itoa(indent) + `"><img src="s.gif" height="1" width="` + itoa(indent*40) + `"></td>` +
		`<td class="default"><div><span class="comhead">` +
		`<a href="user?id=` + user + `" class="hnuser">` + user + `</a> ` + age +
		`</span></div><div class="commtext c00">` + text + `</div></td>` +
		`</tr></table></td></tr>`
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestExtractPostings(t *testing.T) {
	page := threadPage(
		commentRow(111, 0, "alice", `Acme | Remote | <a href="https://acme.example">apply</a>`) +
			commentRow(333, 1, "bob", `Is this still open?`) +
			commentRow(222, 0, "carol", `Globex &amp; Sons | NYC | Onsite`),
	)

	doc, err := ParsePage(page)
	require.NoError(t, err)

	postings := ExtractPostings(doc)
	require.Len(t, postings, 2)

	assert.Equal(t, int64(111), postings[0].ExternalId)
	assert.Equal(t, "alice", postings[0].Author)
	assert.Contains(t, postings[0].Text, `<a href="https://acme.example">apply</a>`)

	assert.Equal(t, int64(222), postings[1].ExternalId)
	assert.Equal(t, "carol", postings[1].Author)
	// Entities stay encoded in the raw markup.
	assert.Contains(t, postings[1].Text, "Globex &amp; Sons")
}

func TestExtractPostings_ReplyExcluded(t *testing.T) {
	page := threadPage(commentRow(333, 2, "bob", "nested reply"))

	doc, err := ParsePage(page)
	require.NoError(t, err)

	assert.Empty(t, ExtractPostings(doc))
}

func TestExtractPostings_MissingIdStillEmitted(t *testing.T) {
	page := threadPage(commentRow(0, 0, "dave", "no permalink on this one"))

	doc, err := ParsePage(page)
	require.NoError(t, err)

	postings := ExtractPostings(doc)
	require.Len(t, postings, 1)
	assert.Equal(t, int64(0), postings[0].ExternalId)
	assert.Equal(t, "dave", postings[0].Author)
}

func TestExtractPostings_MissingContentBlock(t *testing.T) {
	row := `<tr class="athing comtr"><td><table><tr>` +
		`<td indent="0"></td>` +
		`<td class="default"><span class="age"><a href="item?id=444">1 hour ago</a></span></td>` +
		`</tr></table></td></tr>`

	doc, err := ParsePage(threadPage(row))
	require.NoError(t, err)

	postings := ExtractPostings(doc)
	require.Len(t, postings, 1)
	assert.Equal(t, int64(444), postings[0].ExternalId)
	assert.Empty(t, postings[0].Text)
}

func TestIdFromTarget(t *testing.T) {
	tests := []struct {
		name string
		href string
		want int64
	}{
		{"query style", "item?id=43547611", 43547611},
		{"absolute query style", "https://news.ycombinator.com/item?id=42", 42},
		{"path style", "item/42", 42},
		{"no numeric segment", "item?id=abc", 0},
		{"empty", "", 0},
		{"negative", "item?id=-5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idFromTarget(tt.href))
		})
	}
}
