package player

import (
	"strings"
)

// MediaID derives the identifier of the media a track URL refers to. The
// recognized forms are:
//
//	https://www.youtube.com/watch?v=<id>&...
//	https://youtu.be/<id>?...
//
// An empty string is returned for any other URL, meaning that the track has
// no playable media.
func MediaID(url string) string {
	for _, key := range []string{"?v=", "&v="} {
		if i := strings.Index(url, key); i != -1 {
			id := url[i+len(key):]
			id = cutAny(id, "&#")
			return id
		}
	}
	if i := strings.Index(url, "youtu.be/"); i != -1 {
		return cutAny(url[i+len("youtu.be/"):], "?&#/")
	}
	return ""
}

func cutAny(s, chars string) string {
	if i := strings.IndexAny(s, chars); i != -1 {
		return s[:i]
	}
	return s
}
