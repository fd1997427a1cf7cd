package audio

import (
	"regexp"
	"strings"
)

// The OS sometimes appends numeric suffixes to endpoint names when a
// driver is reinstalled ("Speakers (2- Realtek Audio)", "Headphones (3)
// (Arctis 7)"). The cleaned name is the identity used for migration
// matching and display, so it must be applied everywhere a name is stored
// or compared.
var (
	nameSplitter = regexp.MustCompile(`(?P<friendlyName>.+)\s\([\d\s\-|]*(?P<deviceName>.+)\)`)
	nameCleaner  = regexp.MustCompile(`\s?\(\d\)|^\d+\s?-\s?`)
)

// CleanName strips the redundant numeric and parenthetical suffixes from a
// device friendly name.
func CleanName(name string) string {
	captures := nameSplitter.FindStringSubmatch(name)
	if captures == nil {
		// Old naming format, use as is
		return name
	}

	friendlyName := captures[nameSplitter.SubexpIndex("friendlyName")]
	deviceName := captures[nameSplitter.SubexpIndex("deviceName")]

	cleaned := nameCleaner.ReplaceAllString(friendlyName, "")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned + " (" + deviceName + ")"
}
