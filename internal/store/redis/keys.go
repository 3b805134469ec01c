package redis

import "strconv"

const (
	// KeyPrefixBookmark is the prefix for cached bookmark records
	KeyPrefixBookmark = "bookmarkd:bookmark:"
)

// BookmarkKey returns the Redis key caching the bookmark with the given id
func BookmarkKey(id int64) string {
	return KeyPrefixBookmark + strconv.FormatInt(id, 10)
}
