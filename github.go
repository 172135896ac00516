package starnotify

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Stargazer is one record from the repository stargazers listing.
type Stargazer struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Key returns the identity key under which a stargazer is tracked in the
// known-set: "{login}_{id}".
func (s Stargazer) Key() string {
	return fmt.Sprintf("%s_%d", s.Login, s.ID)
}

// User is the extended profile for a stargazer, fetched separately from the
// listing.
type User struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Followers int    `json:"followers"`
	Location  string `json:"location"`
	Company   string `json:"company"`
}

const defaultPageSize = 100

// GitHubClient talks to the two GitHub endpoints this program needs: the
// repository stargazers listing and the user profile lookup.
type GitHubClient struct {
	// Repository is the repository being watched, in owner/repo format.
	Repository string

	token      string
	apiBaseURL string
	pageSize   int
	client     *http.Client
	log        *zap.SugaredLogger
}

// NewGitHubClient returns a client for the given repository. The token is
// attached as a bearer credential to every request.
func NewGitHubClient(repo, token string, options ...func(*GitHubClient)) (*GitHubClient, error) {
	if repo == "" {
		return nil, errors.New("repository must be specified")
	}
	if token == "" {
		return nil, errors.New("token must be specified")
	}
	const githubAPIBaseURL = "https://api.github.com"
	c := &GitHubClient{
		Repository: repo,
		token:      token,
		apiBaseURL: githubAPIBaseURL,
		pageSize:   defaultPageSize,
		client:     initHTTPClient(20 * time.Second),
		log:        zap.NewNop().Sugar(),
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// WithGitHubLogger sets the *zap.SugaredLogger the client will use
// internally. Without it, a no-op log is used.
func WithGitHubLogger(logger *zap.SugaredLogger) func(*GitHubClient) {
	return func(c *GitHubClient) {
		c.log = logger
	}
}

// WithGitHubBaseURL points the client at an alternate API base URL.
func WithGitHubBaseURL(base string) func(*GitHubClient) {
	return func(c *GitHubClient) {
		c.apiBaseURL = base
	}
}

// WithGitHubHTTPClient sets the *http.Client used for API calls.
func WithGitHubHTTPClient(hc *http.Client) func(*GitHubClient) {
	return func(c *GitHubClient) {
		c.client = hc
	}
}

// WithGitHubPageSize overrides the listing page size.
func WithGitHubPageSize(n int) func(*GitHubClient) {
	return func(c *GitHubClient) {
		c.pageSize = n
	}
}

// Stargazers fetches the complete current stargazers listing for the
// repository, walking pages until a short or empty page. Any transport or
// API error aborts the whole fetch: no partial listing is ever returned.
func (c *GitHubClient) Stargazers() ([]Stargazer, error) {
	var all []Stargazer
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/stargazers", c.apiBaseURL, c.Repository)
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.pageSize))

		var batch []Stargazer
		if err := c.getJSON(endpoint+"?"+q.Encode(), &batch); err != nil {
			return nil, errors.Wrapf(err, "fetching stargazers page %d", page)
		}
		all = append(all, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}
	c.log.Debugw("fetched stargazers",
		"repo", c.Repository,
		"count", len(all))
	return all, nil
}

// User fetches the extended profile for the given login. Errors are
// returned to the caller, which decides whether they are fatal.
func (c *GitHubClient) User(login string) (*User, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.apiBaseURL, url.PathEscape(login))
	var u User
	if err := c.getJSON(endpoint, &u); err != nil {
		return nil, errors.Wrapf(err, "fetching user %s", login)
	}
	return &u, nil
}

func (c *GitHubClient) getJSON(endpoint string, dest interface{}) error {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Accept", "application/vnd.github.v3+json")
	req.Header.Add("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error reaching GitHub API: %s", endpoint)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error during GitHub API call: %v (url: %s)",
			resp.Status, endpoint)
	}
	return decodeResponse(resp.Body, dest)
}
