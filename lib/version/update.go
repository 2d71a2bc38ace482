// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/filament-archive/filament/lib/netutil"
)

// DefaultReleaseEndpoint is the latest-release API URL queried by the
// update check.
const DefaultReleaseEndpoint = "https://api.github.com/repos/filament-archive/filament/releases/latest"

// Release describes the newest published release.
type Release struct {
	// TagName is the release tag, normally "v<semver>".
	TagName string `json:"tag_name"`

	// Name is the release title.
	Name string `json:"name"`

	// URL is the release page for humans.
	URL string `json:"html_url"`
}

// CheckLatest fetches the latest release from endpoint, which must
// serve the GitHub latest-release JSON shape. A nil httpClient uses
// http.DefaultClient; an empty endpoint uses DefaultReleaseEndpoint.
func CheckLatest(ctx context.Context, httpClient *http.Client, endpoint string) (*Release, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultReleaseEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release endpoint returned %d: %s",
			resp.StatusCode, netutil.ErrorBody(resp.Body))
	}
	var release Release
	if err := netutil.DecodeResponse(resp.Body, &release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("release endpoint %s returned no tag name", endpoint)
	}
	return &release, nil
}

// NewerThan reports whether the release's tag is a higher semantic
// version than current. Both sides are normalized to a leading "v". A
// current version that does not parse or carries a prerelease suffix
// (development builds) never counts as older.
func (r *Release) NewerThan(current string) bool {
	cur := normalizeTag(current)
	if !semver.IsValid(cur) || semver.Prerelease(cur) != "" {
		return false
	}
	tag := normalizeTag(r.TagName)
	if !semver.IsValid(tag) {
		return false
	}
	return semver.Compare(tag, cur) > 0
}

func normalizeTag(s string) string {
	if s == "" || strings.HasPrefix(s, "v") {
		return s
	}
	return "v" + s
}
