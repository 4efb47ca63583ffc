package agents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/duynguyendang/deconstructor/pkg/gemini"
)

// maxArticleHTMLBytes caps how much of a page is forwarded to the model.
const maxArticleHTMLBytes = 512 << 10

// WebContentAgent fetches an arbitrary web page and extracts the main
// article text from it. There is no output schema here; the result is plain
// text, and an empty string means no article was found.
type WebContentAgent struct {
	llm    gemini.Generator
	client *http.Client
}

func NewWebContentAgent(llm gemini.Generator, client *http.Client) *WebContentAgent {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebContentAgent{llm: llm, client: client}
}

// FetchAndExtract downloads the page and asks the model for the main
// article text. Fetch failures surface as NetworkFetchError; extraction
// failures as StageError.
func (w *WebContentAgent) FetchAndExtract(ctx context.Context, url string, progress func(string)) (string, error) {
	progress("Requesting URL content...")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &NetworkFetchError{URL: url, Err: err}
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return "", &NetworkFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &NetworkFetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleHTMLBytes))
	if err != nil {
		return "", &NetworkFetchError{URL: url, Err: err}
	}

	progress("Extracting main article from HTML...")
	html := StripBoilerplate(string(body))

	prompt := fmt.Sprintf(`You are an expert web content extractor. Analyze the following HTML content and extract only the main article text. Ignore all navigation bars, headers, footers, advertisements, sidebars, and other boilerplate content. Return only the clean, readable text of the article. If no main article is found, return an empty string.
--- HTML CONTENT ---
%s
--- END HTML CONTENT ---`, html)

	out, err := w.llm.Generate(ctx, gemini.Request{
		Prompt:      prompt,
		Temperature: ptr(float32(0.0)),
	})
	if err != nil {
		return "", stageErr("article extraction", err)
	}
	return strings.TrimSpace(out.Text), nil
}

// StripBoilerplate removes scripts, styles, and obvious chrome from a page
// before it is sent to the model, which keeps the prompt within budget on
// heavy pages. On unparseable input the original HTML is returned.
func StripBoilerplate(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript, iframe, svg, nav, header, footer, aside").Remove()
	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}
