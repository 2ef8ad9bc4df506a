package handler

import "regexp"

// youtubePatterns match, from the start of the string, the watch page,
// short links, embeds, legacy /v/ paths and shorts.
var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/v/[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/shorts/[\w-]+`),
}

// IsValidYouTubeURL reports whether url starts with a recognized YouTube link.
// Callers trim surrounding whitespace first.
func IsValidYouTubeURL(url string) bool {
	for _, re := range youtubePatterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
