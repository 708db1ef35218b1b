package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/integrations"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// Client fetches package documents from an npm-compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the registry at baseURL. An empty baseURL
// selects [DefaultBaseURL].
func NewClient(baseURL string, opts integrations.Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"Accept": "application/json"}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	opts.Headers = headers
	return &Client{
		Client:  integrations.NewClient(opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the registry root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchTimes returns the package document's "time" map: version string to
// RFC 3339 publish timestamp, plus the bookkeeping keys "created" and
// "modified". Values are returned unparsed.
//
// A document without a usable "time" field yields
// [integrations.ErrMalformedResponse]; an unknown package yields
// [integrations.ErrNotFound].
func (c *Client) FetchTimes(ctx context.Context, pkg string) (map[string]string, error) {
	if err := ValidateName(pkg); err != nil {
		return nil, err
	}

	var doc packument
	if err := c.Get(ctx, c.packageURL(pkg), &doc); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return nil, err
	}
	if doc.Time == nil {
		return nil, fmt.Errorf("%w: npm package %s has no time field", integrations.ErrMalformedResponse, pkg)
	}
	return doc.Time, nil
}

// packageURL builds the document URL. The slash of a scoped name is
// escaped so "@types/node" stays a single path segment.
func (c *Client) packageURL(pkg string) string {
	return c.baseURL + "/" + url.PathEscape(pkg)
}

// ValidateName rejects names that cannot be npm packages and could
// otherwise reach outside the registry's package namespace.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errs.New(errs.ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > 214:
		return errs.New(errs.ErrCodeInvalidPackage, "package name %q too long (max 214 characters)", name)
	case strings.HasPrefix(name, ".") || strings.Contains(name, ".."):
		return errs.New(errs.ErrCodeInvalidPackage, "package name %q contains a path traversal", name)
	case strings.ContainsAny(name, " \t\r\n\\"):
		return errs.New(errs.ErrCodeInvalidPackage, "package name %q contains invalid characters", name)
	case strings.Count(name, "/") > 1, strings.Contains(name, "/") && !strings.HasPrefix(name, "@"):
		return errs.New(errs.ErrCodeInvalidPackage, "package name %q has an invalid scope", name)
	}
	return nil
}

// packument is the subset of an npm package document that matters here.
type packument struct {
	Name string            `json:"name"`
	Time map[string]string `json:"time"`
}
