package pipeline

import "testing"

func TestClassifyURL(t *testing.T) {
	cases := []struct {
		url  string
		want URLRoute
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", URLYouTube},
		{"youtu.be/dQw4w9WgXcQ", URLYouTube},
		{"http://youtube.com/shorts/abc", URLYouTube},
		{"https://www.ted.com/talks/speaker_title", URLTEDTalk},
		{"ted.com/talks/some_talk", URLTEDTalk},
		{"https://archive.org/details/some_item", URLArchiveOrg},
		{"https://archive.org/embed/some_item", URLArchiveOrg},
		{"https://www.ted.com/about", URLGenericArticle},
		{"https://example.com/blog/post", URLGenericArticle},
		{"https://archive.org/donate", URLGenericArticle},
	}
	for _, c := range cases {
		if got := ClassifyURL(c.url); got != c.want {
			t.Errorf("ClassifyURL(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestClassifyFile(t *testing.T) {
	cases := []struct {
		mime string
		want FileRoute
	}{
		{"text/plain", FilePlainText},
		{"audio/mpeg", FileAudio},
		{"audio/wav", FileAudio},
		{"video/mp4", FileVideo},
		{"image/png", FileImage},
		{"application/pdf", FileArchiveFallback},
		{"text/html", FileArchiveFallback},
		{"application/octet-stream", FileArchiveFallback},
	}
	for _, c := range cases {
		if got := ClassifyFile(c.mime); got != c.want {
			t.Errorf("ClassifyFile(%q) = %v, want %v", c.mime, got, c.want)
		}
	}
}

func TestParseTextKind(t *testing.T) {
	if k, err := ParseTextKind("publication"); err != nil || k != TextPublication {
		t.Errorf("Expected publication, got %q, %v", k, err)
	}
	if k, err := ParseTextKind("narrative"); err != nil || k != TextNarrative {
		t.Errorf("Expected narrative, got %q, %v", k, err)
	}
	if _, err := ParseTextKind("poetry"); err == nil {
		t.Error("Expected error for unknown kind")
	}
	if _, err := ParseTextKind(""); err == nil {
		t.Error("Expected error for empty kind")
	}
}
