package census

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

const defaultTigerBaseURL = "https://www2.census.gov/geo/tiger"

// Downloader fetches TIGER/Line zip archives and extracts them in place.
type Downloader struct {
	httpClient *http.Client
	baseURL    string
}

// NewDownloader builds a TIGER downloader against the Census file server.
func NewDownloader() *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultTigerBaseURL,
	}
}

// Exists checks a URL without downloading the whole file. Some mirrors
// reject HEAD, so a tiny ranged GET is the fallback.
func (d *Downloader) Exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := d.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK:
			return true
		case http.StatusForbidden, http.StatusMethodNotAllowed:
			// HEAD not allowed here; try GET below.
		default:
			return false
		}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err = d.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent
}

// DownloadAndUnzip fetches a zip archive and extracts its files into outDir.
func (d *Downloader) DownloadAndUnzip(ctx context.Context, url, outDir string) error {
	progress.LogRequest("tiger", "GET", url, nil)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	progress.LogResponse("tiger", resp.StatusCode, time.Since(start), len(body))

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("open zip from %s: %w", url, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outDir, err)
	}

	for _, zf := range zr.File {
		name := filepath.Base(zf.Name)
		if name == "." || zf.FileInfo().IsDir() || strings.Contains(zf.Name, "..") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open %s in zip: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read %s in zip: %w", zf.Name, err)
		}
		dest := filepath.Join(outDir, name)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
	}

	progress.LogStage("fetch", "extracted %s -> %s", filepath.Base(url), outDir)
	return nil
}

// FetchGeometry downloads the block-group and tabulation-block shapefiles
// for the workspace's state and census year.
func (d *Downloader) FetchGeometry(ctx context.Context, ws states.Workspace) error {
	downloads := []struct {
		subdir string
		name   string
		dir    string
	}{
		{"BG", fmt.Sprintf("tl_%d_%s_bg.zip", ws.CensusYear, ws.State.FIPS), ws.BGDir()},
		{"TABBLOCK20", fmt.Sprintf("tl_%d_%s_tabblock20.zip", ws.CensusYear, ws.State.FIPS), ws.TabblockDir()},
	}

	for _, dl := range downloads {
		url := fmt.Sprintf("%s/TIGER%d/%s/%s", d.baseURL, ws.CensusYear, dl.subdir, dl.name)
		if err := d.DownloadAndUnzip(ctx, url, dl.dir); err != nil {
			return fmt.Errorf("fetch %s geometry: %w", dl.subdir, err)
		}
	}
	return nil
}

// Congressional district vintages to probe, newest first. TIGER names the
// CD zip by congress number and the current one varies by vintage.
var cdTags = []string{"cd119", "cd118", "cd117", "cd116", "cd115", "cd114", "cd113"}

// FetchPlans downloads the official district boundaries (congressional plus
// both state legislative chambers) from the TIGER vintage planYear. Not
// every chamber exists for every state; absences are logged, not fatal.
func (d *Downloader) FetchPlans(ctx context.Context, ws states.Workspace, planYear int) error {
	foundAny := false

	for _, tag := range cdTags {
		name := fmt.Sprintf("tl_%d_%s_%s.zip", planYear, ws.State.FIPS, tag)
		url := fmt.Sprintf("%s/TIGER%d/CD/%s", d.baseURL, planYear, name)
		if !d.Exists(ctx, url) {
			continue
		}
		outDir := filepath.Join(ws.PlansDir(), fmt.Sprintf("%s_cong_adopted_%d", ws.State.Abbr, planYear))
		if err := d.DownloadAndUnzip(ctx, url, outDir); err != nil {
			return fmt.Errorf("fetch congressional plan: %w", err)
		}
		foundAny = true
		break
	}
	if !foundAny {
		progress.LogStage("fetch", "no congressional district zip found for %s in TIGER%d", ws.State.Abbr, planYear)
	}

	// Lower chamber lands in the combined legislative directory; the upper
	// chamber gets its own so both survive side by side.
	for _, chamber := range []struct {
		subdir string
		outDir string
	}{
		{"SLDL", fmt.Sprintf("%s_sl_adopted_%d", ws.State.Abbr, planYear)},
		{"SLDU", fmt.Sprintf("%s_sldu_adopted_%d", ws.State.Abbr, planYear)},
	} {
		name := fmt.Sprintf("tl_%d_%s_%s.zip", planYear, ws.State.FIPS, strings.ToLower(chamber.subdir))
		url := fmt.Sprintf("%s/TIGER%d/%s/%s", d.baseURL, planYear, chamber.subdir, name)
		if !d.Exists(ctx, url) {
			progress.LogStage("fetch", "%s not available for %s in TIGER%d, skipping", chamber.subdir, ws.State.Abbr, planYear)
			continue
		}
		outDir := filepath.Join(ws.PlansDir(), chamber.outDir)
		if err := d.DownloadAndUnzip(ctx, url, outDir); err != nil {
			return fmt.Errorf("fetch %s plan: %w", chamber.subdir, err)
		}
		foundAny = true
	}

	if !foundAny {
		return fmt.Errorf("no plan boundaries found for %s in TIGER%d", ws.State.Abbr, planYear)
	}
	return nil
}
