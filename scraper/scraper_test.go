package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractUsernameFromTitle(t *testing.T) {
	cases := map[string]string{
		`<html><head><title>Pema Lhamu - road broken near school | Facebook</title></head></html>`: "Pema Lhamu",
		`<html><head><title>Dorjee Bhutia | Facebook</title></head></html>`:                        "Dorjee Bhutia",
		`<html><head><title>Karma - #TagusComplaint water issue | Facebook</title></head></html>`:  "Karma",
	}
	for html, want := range cases {
		assert.Equal(t, want, extractUsername(docFromHTML(t, html)))
	}
}

func TestExtractUsernameFallbacks(t *testing.T) {
	assert.Equal(t, "Name not found", extractUsername(docFromHTML(t, `<html><head></head></html>`)))
	assert.Equal(t, "Name not found", extractUsername(docFromHTML(t, `<html><head><title>Facebook</title></head></html>`)))
	// a title that is nothing but the watermark yields no usable name
	assert.Equal(t, "Name not found", extractUsername(docFromHTML(t, `<html><head><title>TagusComplaint</title></head></html>`)))
}

func TestExtractMediaFromMetaTags(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://cdn/pic.jpg"/>
		<meta property="og:video" content="https://cdn/clip.mp4"/>
	</head></html>`
	media := extractMedia(docFromHTML(t, html), html)

	require.Len(t, media, 2)
	assert.Equal(t, "image", media[0].Type)
	assert.Equal(t, "https://cdn/pic.jpg", media[0].URL)
	assert.Equal(t, "video", media[1].Type)
}

func TestExtractMediaFallsBackToInlineVideoURL(t *testing.T) {
	html := `<html><body><script>var src = "https://video-abc.fbcdn.net/v/clip_720.mp4?tag=1";</script></body></html>`
	media := extractMedia(docFromHTML(t, html), html)

	require.Len(t, media, 1)
	assert.Equal(t, "video", media[0].Type)
	assert.Contains(t, media[0].URL, ".mp4")
}
