// Package version reports the build version and checks GitHub for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blang/semver/v4"
)

// Version is set via ldflags during build
var Version = "dev"

const (
	RepoURL     = "https://github.com/byterings/gix"
	ReleasesAPI = "https://api.github.com/repos/byterings/gix/releases/latest"

	checkTimeout = 10 * time.Second
)

// Release is the subset of the GitHub release payload gix reads
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result compares the running version with the latest release
type Result struct {
	Current         string
	Latest          string
	URL             string
	UpdateAvailable bool
}

// Checker queries a releases endpoint
type Checker struct {
	Client *http.Client
	URL    string
}

// NewChecker returns a checker for the gix releases API
func NewChecker() *Checker {
	return &Checker{Client: &http.Client{Timeout: checkTimeout}, URL: ReleasesAPI}
}

// Parse reads a version, accepting a leading "v". Unparsable versions
// such as "dev" read as 0.0.0 so any release counts as newer.
func Parse(s string) semver.Version {
	v, err := semver.ParseTolerant(s)
	if err != nil {
		return semver.Version{}
	}
	return v
}

// Latest fetches the newest release
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "gix-cli")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release information: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch release information: %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to parse release information: %w", err)
	}
	if rel.TagName == "" {
		return nil, fmt.Errorf("release has no tag")
	}
	return &rel, nil
}

// Check compares current against the latest release
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	rel, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	latest := Parse(rel.TagName)
	return &Result{
		Current:         current,
		Latest:          latest.String(),
		URL:             rel.HTMLURL,
		UpdateAvailable: latest.GT(Parse(current)),
	}, nil
}
