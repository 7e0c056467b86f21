package render

import "fmt"

// UserURL returns the profile link for a posting author.
func UserURL(handle string) string {
	return fmt.Sprintf("https://news.ycombinator.com/user?id=%s", handle)
}

// ItemURL returns the permalink for a posting's source comment.
func ItemURL(externalId int64) string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", externalId)
}
