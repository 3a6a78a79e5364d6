package fetch

import (
	"net/url"
	"strings"
)

// Board is a known job board.
type Board string

// Recognized boards.
const (
	BoardGreenhouse Board = "greenhouse"
	BoardLever      Board = "lever"
	BoardWorkday    Board = "workday"
	BoardUnknown    Board = "unknown"
)

type boardProfile struct {
	hosts   []string
	content []string
	noise   []string
}

var boardProfiles = map[Board]boardProfile{
	BoardGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	BoardLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	BoardWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// Shared by every board: application forms, EEO notices, share widgets.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
}

// DetectBoard identifies the job board from a URL's host.
func DetectBoard(urlStr string) Board {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return BoardUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for board, profile := range boardProfiles {
		for _, h := range profile.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return board
			}
		}
	}
	return BoardUnknown
}

// ContentSelectors returns the selectors tried, in order, for the description body.
func (b Board) ContentSelectors() []string {
	if profile, ok := boardProfiles[b]; ok {
		return append(append([]string{}, profile.content...), JobPostingSelectors()...)
	}
	return JobPostingSelectors()
}

// NoiseSelectors returns the selectors removed before text extraction.
func (b Board) NoiseSelectors() []string {
	noise := append([]string{}, commonNoise...)
	if profile, ok := boardProfiles[b]; ok {
		noise = append(noise, profile.noise...)
	}
	return noise
}
