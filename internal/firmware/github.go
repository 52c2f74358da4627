package firmware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/getyourway/scanpad-go/internal/config"
)

// DefaultAssetName is the firmware asset attached to releases.
const DefaultAssetName = "ble_hid.bin"

const defaultAPIBase = "https://api.github.com"

// Release describes a published firmware version.
type Release struct {
	Version     string
	AssetName   string
	DownloadURL string
	Size        int64
}

// GitHub looks up firmware releases. Token may be empty for public
// repositories.
type GitHub struct {
	Repo  string
	Token string

	// Overridable for tests.
	APIBase string
	Client  *http.Client
}

type releaseJSON struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	} `json:"assets"`
}

func (g *GitHub) apiBase() string {
	if g.APIBase != "" {
		return g.APIBase
	}
	return defaultAPIBase
}

func (g *GitHub) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return http.DefaultClient
}

func (g *GitHub) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	return g.client().Do(req)
}

// LatestRelease finds the newest release carrying the firmware asset.
func (g *GitHub) LatestRelease() (Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", g.apiBase(), g.Repo)
	config.Debugf("firmware: fetching %s", url)
	resp, err := g.get(url)
	if err != nil {
		return Release{}, fmt.Errorf("query releases: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("query releases: %s returned %s", g.Repo, resp.Status)
	}

	var rel releaseJSON
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Release{}, fmt.Errorf("parse release: %w", err)
	}
	for _, a := range rel.Assets {
		if a.Name == DefaultAssetName {
			return Release{
				Version:     rel.TagName,
				AssetName:   a.Name,
				DownloadURL: a.BrowserDownloadURL,
				Size:        a.Size,
			}, nil
		}
	}
	return Release{}, fmt.Errorf("release %s has no %s asset", rel.TagName, DefaultAssetName)
}

// Fetch downloads a release asset, reporting progress as bytes arrive.
func (g *GitHub) Fetch(rel Release, w io.Writer, progress func(done, total int64)) error {
	resp, err := g.get(rel.DownloadURL)
	if err != nil {
		return fmt.Errorf("download %s: %w", rel.AssetName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: %s", rel.AssetName, resp.Status)
	}

	total := rel.Size
	if total == 0 {
		total = resp.ContentLength
	}
	var done int64
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write firmware: %w", werr)
			}
			done += int64(n)
			if progress != nil {
				progress(done, total)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("download interrupted: %w", err)
		}
	}
}
