package player

import (
	"testing"
)

func TestMediaID(t *testing.T) {
	testCases := []struct {
		url string
		id  string
	}{
		{"https://www.youtube.com/watch?v=fJ9rUzIMcZQ", "fJ9rUzIMcZQ"},
		{"https://www.youtube.com/watch?v=QkF3oxziUI4&t=42s", "QkF3oxziUI4"},
		{"https://www.youtube.com/watch?list=abc&v=1w7OgIMMRc4", "1w7OgIMMRc4"},
		{"https://www.youtube.com/watch?v=zUwEIt9ez7M#comments", "zUwEIt9ez7M"},
		{"https://youtu.be/zUwEIt9ez7M", "zUwEIt9ez7M"},
		{"https://youtu.be/zUwEIt9ez7M?t=10", "zUwEIt9ez7M"},
		{"youtu.be/fJ9rUzIMcZQ#x", "fJ9rUzIMcZQ"},
		{"https://vimeo.com/123456", ""},
		{"", ""},
		{"not a url", ""},
	}
	for _, tc := range testCases {
		if id := MediaID(tc.url); id != tc.id {
			t.Fatalf("Unexpected media id for %q: %q != %q", tc.url, id, tc.id)
		}
	}
}
