package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const updateRepo = "Fepozopo/tilt"

// githubAPI is the base URL of the releases API.
var githubAPI = "https://api.github.com"

// semverRe finds a version like v1.2.3 or 1.2.3 inside a tag or release name.
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// detectLatestFallback queries the GitHub Releases API and returns the
// highest published, non-prerelease release whose tag or name carries a
// semantic version. If none is found it returns (nil, false, nil).
func detectLatestFallback(apiBase, repo string) (*selfupdate.Release, bool, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(apiBase, "/"), repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []struct {
		TagName    string `json:"tag_name"`
		Name       string `json:"name"`
		Draft      bool   `json:"draft"`
		Prerelease bool   `json:"prerelease"`
		HTMLURL    string `json:"html_url"`
		Assets     []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			if match = semverRe.FindString(r.Name); match == "" {
				continue
			}
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		assetURL := ""
		for _, a := range r.Assets {
			if matchesPlatform(a.Name) {
				assetURL = a.BrowserDownloadURL
				break
			}
			if assetURL == "" {
				assetURL = a.BrowserDownloadURL
			}
		}
		candidates = append(candidates, &selfupdate.Release{
			Version:  v,
			AssetURL: assetURL,
			URL:      r.HTMLURL,
			Name:     r.Name,
		})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], true, nil
}

func matchesPlatform(asset string) bool {
	n := strings.ToLower(asset)
	for _, k := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// latestRelease asks go-github-selfupdate first and falls back to the plain
// releases API, which tolerates loosely named tags.
func latestRelease(repo string) (*selfupdate.Release, bool, error) {
	if rel, found, err := selfupdate.DetectLatest(repo); err == nil && found {
		return rel, true, nil
	}
	return detectLatestFallback(githubAPI, repo)
}

// CheckForUpdates reports the latest release and, after confirmation,
// replaces the running binary and restarts it.
func CheckForUpdates(p *Prompter) error {
	fmt.Fprintf(p.out, "Current version: %s\n", Version)
	latest, found, err := latestRelease(updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found || latest == nil {
		fmt.Fprintf(p.out, "No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Fprintf(p.out, "Latest version: %s\n", latest.Version)

	currentVer, parseErr := semver.Parse(strings.TrimPrefix(Version, "v"))
	if parseErr != nil {
		fmt.Fprintf(p.out, "warning: could not parse current version %q: %v\n", Version, parseErr)
	} else if latest.Version.LTE(currentVer) {
		fmt.Fprintf(p.out, "You are already running the latest version: %s.\n", currentVer)
		return nil
	}

	if latest.AssetURL == "" {
		fmt.Fprintf(p.out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		fmt.Fprintln(p.out, "Please visit the project releases page to download the new version.")
		return nil
	}

	answer, err := p.PromptLine(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(p.out, "Update cancelled.")
		return nil
	}

	fmt.Fprintln(p.out, "Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		// Exec only returns on error; start the new binary as a child instead.
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Fprintf(p.out, "Updated to version %s, but failed to restart automatically: %v; fallback start error: %v\n", latest.Version, err, startErr)
			fmt.Fprintln(p.out, "Please restart the application manually.")
			return nil
		}
		os.Exit(0)
	}
	return nil
}
