package cache

import "fmt"

// Key construction lives here so every operation gets its own namespace. A
// search term can never collide with a page spec or an id lookup, even when
// the raw strings match.

func IDKey(id int64) string {
	return fmt.Sprintf("id:%d", id)
}

func PageKey(page int, size int, sort string) string {
	return fmt.Sprintf("page:%d:size:%d:sort:%s", page, size, sort)
}

func SearchKey(term string) string {
	return "search:" + term
}
