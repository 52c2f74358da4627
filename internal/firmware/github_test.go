package firmware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLatestRelease(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/repos/getyourway/aRdent-ScanPad/releases/latest" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"tag_name": "v2.3.0",
			"assets": [
				{"name": "notes.txt", "browser_download_url": "x", "size": 10},
				{"name": "ble_hid.bin", "browser_download_url": "https://example.test/fw.bin", "size": 123456}
			]
		}`)
	}))
	defer srv.Close()

	g := &GitHub{Repo: "getyourway/aRdent-ScanPad", Token: "tok", APIBase: srv.URL}
	rel, err := g.LatestRelease()
	if err != nil {
		t.Fatal(err)
	}
	if rel.Version != "v2.3.0" || rel.AssetName != DefaultAssetName || rel.Size != 123456 {
		t.Errorf("release = %+v", rel)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestLatestReleaseNoAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v1.0.0", "assets": []}`)
	}))
	defer srv.Close()

	g := &GitHub{Repo: "getyourway/aRdent-ScanPad", APIBase: srv.URL}
	if _, err := g.LatestRelease(); err == nil || !strings.Contains(err.Error(), DefaultAssetName) {
		t.Errorf("err = %v, want missing asset error", err)
	}
}

func TestFetchReportsProgress(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 70*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	g := &GitHub{Repo: "getyourway/aRdent-ScanPad"}
	rel := Release{AssetName: DefaultAssetName, DownloadURL: srv.URL, Size: int64(len(payload))}

	var buf bytes.Buffer
	var lastDone, lastTotal int64
	err := g.Fetch(rel, &buf, func(done, total int64) {
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), payload) {
		t.Error("downloaded bytes differ")
	}
	if lastDone != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Errorf("final progress = %d/%d", lastDone, lastTotal)
	}
}
