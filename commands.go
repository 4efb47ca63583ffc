package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/duynguyendang/deconstructor/pkg/agents"
	"github.com/duynguyendang/deconstructor/pkg/chat"
	"github.com/duynguyendang/deconstructor/pkg/history"
	mcpserver "github.com/duynguyendang/deconstructor/pkg/mcp"
	"github.com/duynguyendang/deconstructor/pkg/model"
	"github.com/duynguyendang/deconstructor/pkg/pipeline"
	"github.com/duynguyendang/deconstructor/pkg/server"
	"github.com/spf13/cobra"
)

var (
	kindFlag  string
	saveFlag  bool
	titleFlag string
	chatCtx   string
)

func init() {
	analyzeCmd.Flags().StringVar(&kindFlag, "kind", "", "text lens for plain text and articles: publication or narrative")
	analyzeCmd.Flags().BoolVar(&saveFlag, "save", false, "save the result to the analysis history")
	analyzeCmd.Flags().StringVar(&titleFlag, "title", "", "history title (defaults to the input name)")
	collectionCmd.Flags().BoolVar(&saveFlag, "save", false, "save the result to the analysis history")
	collectionCmd.Flags().StringVar(&titleFlag, "title", "", "history title")
	chatCmd.Flags().StringVar(&chatCtx, "context", "analysis", "grounding context: analysis or document")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(analyzeCmd, collectionCmd, serveCmd, mcpCmd, historyCmd, chatCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-or-url>",
	Short: "Analyze a local file or a URL",
	Long: `Analyze a single input. Local files are routed by media type (audio,
video, image, or archival fallback); plain text files and generic article
URLs additionally need --kind to pick the analysis lens. YouTube, TED and
Archive.org URLs go through transcript recovery.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	mode, err := model.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	input := args[0]
	var result model.AnalysisResult

	if _, statErr := os.Stat(input); statErr == nil {
		result, err = analyzeFilePath(a, cmd, input, mode)
	} else if looksLikeURL(input) {
		result, err = analyzeURL(a, cmd, input, mode)
	} else {
		return fmt.Errorf("input %q is neither an existing file nor a URL", input)
	}
	if err != nil {
		return err
	}

	if saveFlag {
		title := titleFlag
		if title == "" {
			title = input
		}
		rec, err := a.store.Save(result, title, input, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved as", rec.ID)
	}
	return printResult(result)
}

func analyzeFilePath(a *app, cmd *cobra.Command, path string, mode model.AnalysisMode) (model.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mimeType := mediaTypeFor(path)

	if pipeline.ClassifyFile(mimeType) == pipeline.FilePlainText {
		kind, err := pipeline.ParseTextKind(kindFlag)
		if err != nil {
			return nil, fmt.Errorf("plain text input needs --kind publication or --kind narrative")
		}
		return a.orch.AnalyzeText(cmd.Context(), string(data), kind, mode, stderrProgress)
	}

	file := agents.File{Name: filepath.Base(path), MIMEType: mimeType, Data: data}
	result, err := a.orch.AnalyzeFile(cmd.Context(), file, mode, stderrProgress)
	if err != nil {
		return nil, err
	}
	model.AttachProvenance(result, model.Provenance{Kind: model.SourceLocalFile, Ref: file.Name})
	return result, nil
}

func analyzeURL(a *app, cmd *cobra.Command, url string, mode model.AnalysisMode) (model.AnalysisResult, error) {
	outcome, err := a.orch.AnalyzeURL(cmd.Context(), url, mode, stderrProgress)
	if err != nil {
		return nil, err
	}

	if outcome.Result == nil {
		// Article text was extracted; run the text pipeline over it with the
		// caller-chosen lens.
		kind, err := pipeline.ParseTextKind(kindFlag)
		if err != nil {
			return nil, fmt.Errorf("article URLs need --kind publication or --kind narrative")
		}
		return a.orch.AnalyzeText(cmd.Context(), outcome.ExtractedText, kind, mode, stderrProgress)
	}

	switch pipeline.ClassifyURL(url) {
	case pipeline.URLYouTube:
		model.AttachProvenance(outcome.Result, model.Provenance{Kind: model.SourceYouTube, Ref: url})
	case pipeline.URLTEDTalk:
		model.AttachProvenance(outcome.Result, model.Provenance{Kind: model.SourceTEDTalk, Ref: url})
	case pipeline.URLArchiveOrg:
		model.AttachProvenance(outcome.Result, model.Provenance{Kind: model.SourceArchiveOrg, Ref: url})
	}
	return outcome.Result, nil
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "www.") ||
		pipeline.ClassifyURL(s) != pipeline.URLGenericArticle
}

func mediaTypeFor(path string) string {
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		return "application/octet-stream"
	}
	if mediaType, _, err := mime.ParseMediaType(mt); err == nil {
		return mediaType
	}
	return mt
}

func printResult(result model.AnalysisResult) error {
	env := model.Envelope{Result: result}
	data, err := json.MarshalIndent(&env, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

var collectionCmd = &cobra.Command{
	Use:   "collection <file>...",
	Short: "Analyze a set of files as one archival collection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		mode, err := model.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		files := make([]agents.File, 0, len(args))
		names := make([]string, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			name := filepath.Base(path)
			files = append(files, agents.File{Name: name, MIMEType: mediaTypeFor(path), Data: data})
			names = append(names, name)
		}

		result, err := a.orch.AnalyzeCollection(ctx, files, mode, stderrProgress)
		if err != nil {
			return err
		}

		if saveFlag {
			title := titleFlag
			if title == "" {
				title = fmt.Sprintf("Collection of %d files", len(files))
			}
			rec, err := a.store.Save(result, title, title, names)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Saved as", rec.ID)
		}
		return printResult(result)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Listening on", a.cfg.ListenAddr)
		srv := server.NewServer(a.orch, a.store, a.client, a.cfg.URLCacheSize)
		return srv.Run(a.cfg.ListenAddr)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on Stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		return mcpserver.Run(cmd.Context(), a.orch, a.store)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the analysis history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		for _, rec := range a.store.List() {
			fmt.Printf("%s  %s  %s\n", rec.ID, rec.UpdatedAt.Format("2006-01-02 15:04"), rec.Title)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		rec, err := a.store.Get(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		return a.store.Delete(args[0])
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <record-id>",
	Short: "Chat about a saved analysis",
	Long: `Start an interactive chat grounded in a saved analysis. The
--context flag selects the grounding: 'analysis' uses the structured
result, 'document' uses the original text (publication and narrative
records only).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		rec, err := a.store.Get(args[0])
		if err != nil {
			return err
		}

		kind := chat.ContextKind(chatCtx)
		content, err := chatContent(rec, kind)
		if err != nil {
			return err
		}

		session, err := chat.NewSession(ctx, a.client, content, kind)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Chatting about %q. Ctrl-D to exit.\n", rec.Title)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Fprint(os.Stderr, "> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			err := session.SendStream(ctx, line, func(chunk string) error {
				fmt.Print(chunk)
				return nil
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				continue
			}
			fmt.Println()
		}
		return scanner.Err()
	},
}

func chatContent(rec *history.Record, kind chat.ContextKind) (string, error) {
	switch kind {
	case chat.ContextDocument:
		switch r := rec.Result.Result.(type) {
		case *model.PublicationAnalysis:
			return r.OriginalText, nil
		case *model.NarrativeAnalysis:
			return r.OriginalText, nil
		}
		return "", fmt.Errorf("record %s has no original document text; use --context analysis", rec.ID)
	case chat.ContextAnalysis:
		data, err := rec.Result.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown chat context: %q", kind)
}
