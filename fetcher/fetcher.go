package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"tagus-watch/config"
	"tagus-watch/models"
	"tagus-watch/ratelimit"
	"tagus-watch/retry"
)

const graphBaseURL = "https://graph.facebook.com"

// requestFields are the post fields requested from the tagged-posts edge.
const requestFields = "id,message,from,created_time,permalink_url,full_picture,picture"

// GraphFetcher pulls page mentions from the Facebook Graph API tagged edge.
// Every request passes the shared rate limiter and the fixed retry policy.
type GraphFetcher struct {
	http        *http.Client
	limiter     *ratelimit.Limiter
	policy      retry.Policy
	pageID      string
	accessToken string
	apiVersion  string
	window      time.Duration
	pageSize    int
}

type graphAuthor struct {
	Name string `json:"name"`
}

type graphPost struct {
	ID           string       `json:"id"`
	Message      string       `json:"message"`
	From         *graphAuthor `json:"from"`
	CreatedTime  string       `json:"created_time"`
	PermalinkURL string       `json:"permalink_url"`
	FullPicture  string       `json:"full_picture"`
	Picture      string       `json:"picture"`
}

type graphPage struct {
	Data   []graphPost `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// New reads page credentials from the environment, matching the deployment
// convention of the other secrets (MONGODB_URI, GEMINI_API_KEY).
func New(limiter *ratelimit.Limiter, policy retry.Policy, cfg config.FacebookConfig) (*GraphFetcher, error) {
	pageID := os.Getenv("FACEBOOK_PAGE_ID")
	token := os.Getenv("FACEBOOK_ACCESS_TOKEN")
	if pageID == "" || token == "" {
		return nil, fmt.Errorf("FACEBOOK_PAGE_ID and FACEBOOK_ACCESS_TOKEN must be set")
	}
	return &GraphFetcher{
		http:        &http.Client{Timeout: 30 * time.Second},
		limiter:     limiter,
		policy:      policy,
		pageID:      pageID,
		accessToken: token,
		apiVersion:  cfg.APIVersion,
		window:      time.Duration(cfg.FetchWindowMinutes) * time.Minute,
		pageSize:    cfg.PageSize,
	}, nil
}

// Fetch returns all posts that tagged the page inside the polling window,
// following pagination until exhausted.
func (f *GraphFetcher) Fetch(ctx context.Context) ([]models.RawPost, error) {
	since := time.Now().Add(-f.window)

	params := url.Values{}
	params.Set("fields", requestFields)
	params.Set("access_token", f.accessToken)
	params.Set("limit", fmt.Sprint(f.pageSize))
	params.Set("since", fmt.Sprint(since.Unix()))

	next := fmt.Sprintf("%s/%s/%s/tagged?%s", graphBaseURL, f.apiVersion, f.pageID, params.Encode())

	var posts []models.RawPost
	for next != "" {
		page, err := f.fetchPage(ctx, next)
		if err != nil {
			return posts, err
		}
		for _, gp := range page.Data {
			posts = append(posts, toRawPost(gp))
		}
		next = page.Paging.Next
	}

	config.InfoWithFields("fetched tagged posts", config.Fields{
		"count": len(posts),
		"since": since.Format(time.RFC3339),
	})
	return posts, nil
}

func (f *GraphFetcher) fetchPage(ctx context.Context, pageURL string) (*graphPage, error) {
	var page graphPage

	err := f.policy.Do(ctx, func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx, ratelimit.ClassFetch); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		resp, err := f.http.Do(req)
		if err != nil {
			return retry.Transient(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return retry.Transient(err)
		}

		if resp.StatusCode >= 500 {
			return retry.Transient(fmt.Errorf("graph api returned %d: %s", resp.StatusCode, truncate(body, 200)))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("graph api returned %d: %s", resp.StatusCode, truncate(body, 200))
		}

		page = graphPage{}
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decoding graph response: %w", err)
		}
		if page.Error != nil {
			return fmt.Errorf("graph api error %d: %s", page.Error.Code, page.Error.Message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func toRawPost(gp graphPost) models.RawPost {
	post := models.RawPost{
		ID:          gp.ID,
		Message:     gp.Message,
		CreatedTime: gp.CreatedTime,
		Permalink:   gp.PermalinkURL,
	}
	if gp.From != nil {
		post.AuthorName = gp.From.Name
	}
	picture := gp.FullPicture
	if picture == "" {
		picture = gp.Picture
	}
	if picture != "" {
		post.MediaRefs = append(post.MediaRefs, models.MediaRef{Type: "image", URL: picture})
	}
	return post
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max])
}
