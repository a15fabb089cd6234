package scraper

import (
	"context"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"tagus-watch/config"
	"tagus-watch/models"
	"tagus-watch/sanitizer"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

const (
	nameNotFound   = "Name not found"
	nameExtractErr = "Error extracting name"
)

var fbVideoSrc = regexp.MustCompile(`https://[^"'\s]+fbcdn[^"'\s]+\.mp4[^"'\s]*`)

// PermalinkScraper renders a post permalink in headless Chrome and pulls the
// author name and media out of the page metadata. The Graph API hides author
// names of posts from non-page users, so this is the only way to recover them.
type PermalinkScraper struct {
	timeout time.Duration
}

func NewPermalinkScraper() *PermalinkScraper {
	return &PermalinkScraper{timeout: 30 * time.Second}
}

// Resolve never fails hard; any render or parse problem returns the NotFound
// sentinel so the caller falls back to the API-provided author name.
func (s *PermalinkScraper) Resolve(ctx context.Context, permalink string) models.ResolvedAuthor {
	html, err := s.renderHTML(ctx, permalink)
	if err != nil {
		config.WarnWithFields("permalink render failed", config.Fields{
			"permalink": permalink,
			"error":     err.Error(),
		})
		return models.ResolvedAuthor{Username: nameExtractErr, NotFound: true}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.ResolvedAuthor{Username: nameExtractErr, NotFound: true}
	}

	author := models.ResolvedAuthor{Source: "permalink"}
	author.Username = extractUsername(doc)
	if author.Username == nameNotFound || author.Username == nameExtractErr {
		author.NotFound = true
	}
	author.Media = extractMedia(doc, html)
	return author
}

func (s *PermalinkScraper) renderHTML(ctx context.Context, url string) (string, error) {
	chromePath := os.Getenv("CHROME_PATH")
	if chromePath == "" {
		chromePath = "/usr/bin/chromium-browser"
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.UserAgent(USER_AGENT),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-crashpad", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	tabCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	tabCtx, cancel = context.WithTimeout(tabCtx, s.timeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}
	return htmlContent, nil
}

// extractUsername takes the page title and strips the post excerpt from it.
// Facebook titles look like "Author Name - text... | Facebook"; the watermark
// post format puts the author before the first dash.
func extractUsername(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return nameNotFound
	}

	if i := strings.Index(title, "|"); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	if i := strings.Index(title, " - "); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	// The watermark leaks into titles of text-only posts.
	title = strings.TrimSpace(sanitizer.Sanitize(title))

	if title == "" || strings.EqualFold(title, "facebook") {
		return nameNotFound
	}
	return title
}

func extractMedia(doc *goquery.Document, html string) []models.MediaRef {
	var media []models.MediaRef

	if img, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && img != "" {
		media = append(media, models.MediaRef{Type: "image", URL: img})
	}
	if vid, ok := doc.Find(`meta[property="og:video"]`).First().Attr("content"); ok && vid != "" {
		media = append(media, models.MediaRef{Type: "video", URL: vid})
	} else if m := fbVideoSrc.FindString(html); m != "" {
		media = append(media, models.MediaRef{Type: "video", URL: m})
	}
	return media
}
