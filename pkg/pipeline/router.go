// Package pipeline routes inputs to the right stage sequence and drives the
// stages in order, forwarding progress and assembling the final result.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// URLRoute identifies the resolver a URL is dispatched to.
type URLRoute int

const (
	URLGenericArticle URLRoute = iota
	URLArchiveOrg
	URLTEDTalk
	URLYouTube
)

func (r URLRoute) String() string {
	switch r {
	case URLArchiveOrg:
		return "archive.org"
	case URLTEDTalk:
		return "ted"
	case URLYouTube:
		return "youtube"
	}
	return "article"
}

// The patterns accept optional scheme and www prefix, case-insensitive.
var (
	youtubeRe    = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)
	tedTalkRe    = regexp.MustCompile(`(?i)^(https?://)?(www\.)?ted\.com/talks/.+$`)
	archiveOrgRe = regexp.MustCompile(`(?i)^(https?://)?(www\.)?archive\.org/(details|embed)/.+$`)
)

// ClassifyURL matches a URL against the supported platform patterns in
// priority order: digital library first, then talk platform, then video
// platform, and generic article extraction as the fallback.
func ClassifyURL(url string) URLRoute {
	url = strings.TrimSpace(url)
	switch {
	case archiveOrgRe.MatchString(url):
		return URLArchiveOrg
	case tedTalkRe.MatchString(url):
		return URLTEDTalk
	case youtubeRe.MatchString(url):
		return URLYouTube
	}
	return URLGenericArticle
}

// FileRoute identifies the stage sequence a local file is dispatched to.
type FileRoute int

const (
	// FilePlainText never enters the byte pipeline; the caller must run
	// text analysis with an explicit text kind instead.
	FilePlainText FileRoute = iota
	FileAudio
	FileVideo
	FileImage
	// FileArchiveFallback treats the file as a one-item collection so that
	// no input type is a hard dead end.
	FileArchiveFallback
)

// ClassifyFile routes a file by its declared media type.
func ClassifyFile(mimeType string) FileRoute {
	switch {
	case mimeType == "text/plain":
		return FilePlainText
	case strings.HasPrefix(mimeType, "audio/"):
		return FileAudio
	case strings.HasPrefix(mimeType, "video/"):
		return FileVideo
	case strings.HasPrefix(mimeType, "image/"):
		return FileImage
	}
	return FileArchiveFallback
}

// TextKind is the caller-selected classification for plain-text input.
type TextKind string

const (
	TextPublication TextKind = "publication"
	TextNarrative   TextKind = "narrative"
)

// ParseTextKind validates a user-supplied text kind.
func ParseTextKind(s string) (TextKind, error) {
	switch TextKind(s) {
	case TextPublication, TextNarrative:
		return TextKind(s), nil
	}
	return "", fmt.Errorf("unknown text kind: %q", s)
}
