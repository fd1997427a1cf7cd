// Package update checks the project's GitHub releases for a newer
// version. It only checks and notifies; installing the update is up to
// the user.
package update

import (
	"fmt"
	"strings"

	"github.com/decred/slog"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/mod/semver"

	"github.com/volkeeper/volkeeper/notify"
)

// Version is the running version, stamped at build time via -ldflags.
var Version = "v0.0.0-dev"

const repoURL = "https://github.com/volkeeper/volkeeper"

// Info describes an available release.
type Info struct {
	LatestVersion string
	DownloadURL   string
	ReleaseURL    string
}

// Check queries the latest release by following the releases/latest
// redirect and compares it against the running version. It returns nil
// when no newer release exists; a malformed remote tag counts as no
// update.
func Check(log slog.Logger) (*Info, error) {
	log.Infof("Checking for updates...")

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil

	resp, err := client.Head(repoURL + "/releases/latest")
	if err != nil {
		return nil, fmt.Errorf("failed to query latest release: %w", err)
	}
	resp.Body.Close()

	// The final URL looks like .../releases/tag/v1.2.3.
	releaseURL := resp.Request.URL.String()
	parts := strings.Split(releaseURL, "/")
	latestTag := parts[len(parts)-1]

	log.Infof("Current: %s, Latest: %s", Version, latestTag)

	if !newer(latestTag, Version) {
		return nil, nil
	}

	return &Info{
		LatestVersion: latestTag,
		DownloadURL:   fmt.Sprintf("%s/releases/download/%s/volkeeper.exe", repoURL, latestTag),
		ReleaseURL:    releaseURL,
	}, nil
}

// newer reports whether the remote tag is a strictly newer release than
// the running version. A malformed tag on either side counts as no update.
func newer(latestTag, current string) bool {
	if !semver.IsValid(latestTag) || !semver.IsValid(current) {
		return false
	}
	return semver.Compare(latestTag, current) > 0
}

// CheckAndNotify runs Check and tells the user about the outcome. Manual
// checks report all outcomes; automatic checks only report an available
// update.
func CheckAndNotify(manual bool, notifier notify.Notifier, log slog.Logger) *Info {
	info, err := Check(log)
	switch {
	case err != nil:
		log.Errorf("Failed to check for updates: %v", err)
		if manual {
			notifier.Notify("Update Check Failed",
				"Failed to check for updates. Please check your internet connection.")
		}
		return nil
	case info == nil:
		log.Infof("No updates available")
		if manual {
			notifier.Notify("No Updates Available",
				"You are running the latest version.")
		}
		return nil
	default:
		log.Infof("Update available: %s", info.LatestVersion)
		notifier.Notify("Update Available",
			fmt.Sprintf("Version %s is available at %s.", info.LatestVersion, info.ReleaseURL))
		return info
	}
}
