package goVK

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSLPhoto(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already https", "https://pp.vk.me/c1/a.jpg", "https://pp.vk.me/c1/a.jpg"},
		{"vk.com", "http://vk.com/images/camera_50.png", "https://vk.com/images/camera_50.png"},
		{
			"legacy content server",
			"http://cs625631.vk.me/v625631245/43f56/MCuFMclvN0U.jpg",
			"https://pp.vk.me/c625631/v625631245/43f56/MCuFMclvN0U.jpg",
		},
		{"query dropped", "http://cs1.userapi.com/a.jpg?size=50", "https://pp.userapi.com/c1/a.jpg"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := SSLPhoto(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSSLPhotoMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"http://example.com/a.jpg", "not a url", "http://cs.vk.me/a.jpg", "http://%zz"} {
		_, err := SSLPhoto(in)
		require.ErrorIs(t, err, ErrMalformedURL, in)

		var mErr *MalformedURLError
		require.ErrorAs(t, err, &mErr)
		assert.Equal(t, in, mErr.URL)
	}
}
