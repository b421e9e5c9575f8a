// Package avatar generates deterministic avatar image URLs from a seed
// string, backed by the dicebear thumbs collection. Same seed, same face.
package avatar

import "net/url"

const endpoint = "https://api.dicebear.com/7.x/thumbs/svg"

// URL returns the avatar image URL for a seed (typically the username).
func URL(seed string) string {
	return endpoint + "?seed=" + url.QueryEscape(seed)
}
