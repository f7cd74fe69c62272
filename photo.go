package goVK

import (
	"net/url"
	"regexp"
)

var legacyPhotoHost = regexp.MustCompile(`^cs(\d+)\.(.+)$`)

// SSLPhoto rewrites a VK photo URL to its https form.
//
//   - "" stays "".
//   - https URLs are returned unchanged.
//   - vk.com URLs become https://vk.com<path>.
//   - Legacy content-server hosts cs<N>.<domain> become
//     https://pp.<domain>/c<N><path>, e.g.
//     http://cs625631.vk.me/v625631245/43f56/MCuFMclvN0U.jpg becomes
//     https://pp.vk.me/c625631/v625631245/43f56/MCuFMclvN0U.jpg.
//
// Query strings and fragments are dropped from rewritten URLs. Any other
// host yields a [*MalformedURLError].
func SSLPhoto(photoURL string) (string, error) {
	if photoURL == "" {
		return "", nil
	}

	u, err := url.Parse(photoURL)
	if err != nil {
		return "", &MalformedURLError{URL: photoURL, Reason: err.Error()}
	}

	if u.Scheme == "https" {
		return photoURL, nil
	}

	host := u.Hostname()
	if host == "" {
		return "", &MalformedURLError{URL: photoURL, Reason: "missing host"}
	}

	if host == "vk.com" {
		return "https://vk.com" + u.EscapedPath(), nil
	}

	m := legacyPhotoHost.FindStringSubmatch(host)
	if m == nil {
		return "", &MalformedURLError{URL: photoURL, Reason: "unknown photo host " + host}
	}

	return "https://pp." + m[2] + "/c" + m[1] + u.EscapedPath(), nil
}
