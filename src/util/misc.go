package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	fullURLRe    = regexp.MustCompile(`^https?://`)
	schemelessRe = regexp.MustCompile(`^//.`)
)

// DetermineFullURLRoot expands the configured URL root into an absolute URL
// that can be shown to users.
//
// Accepted roots are "http://host:port/", "//host:port/" and "/". For the
// latter, the host and port are taken from the bind address.
func DetermineFullURLRoot(root, address string) (string, error) {
	if fullURLRe.MatchString(root) {
		return root, nil
	}
	if schemelessRe.MatchString(root) {
		return "http:" + root, nil
	}
	if root == "/" || root == "" {
		i := strings.LastIndex(address, ":")
		if i == -1 {
			return "", fmt.Errorf("bind address %q has no port", address)
		}
		host, port := address[:i], address[i+1:]
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		} else if host == "[::]" {
			host = "[::1]"
		}
		return fmt.Sprintf("http://%s:%s/", host, port), nil
	}
	return "", fmt.Errorf("unsupported URL root format: %q", root)
}
