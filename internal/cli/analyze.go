package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fts-articles/internal/domain/models"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [title]",
	Short: "Count every known keyword in an article abstract",
	Long: `Prints, for each keyword of the repository, how often it occurs as a
phrase in the abstract (up to four unrelated words may sit between its
words) and how often its words occur one by one, plus one when the
article is tagged with it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, s *session) (bool, error) {
		report, err := s.app.App.Analyze(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		if analyzeJSON {
			return false, printJSON(cmd, report)
		}
		printAnalysis(cmd, report)
		return false, nil
	}),
}

var keywordCmd = &cobra.Command{
	Use:   "keyword [term]",
	Short: "Show where a keyword occurs across the repository",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, s *session) (bool, error) {
		report, err := s.app.App.KeywordDetail(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		if analyzeJSON {
			return false, printJSON(cmd, report)
		}
		printKeywordReport(cmd, report)
		return false, nil
	}),
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the report as JSON")
	keywordCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the report as JSON")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(keywordCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printAnalysis(cmd *cobra.Command, r models.AnalysisReport) {
	cmd.Println(r.Title)
	cmd.Printf("ID: %s\n\n", r.ArticleID)

	cmd.Println("Authors:")
	for _, au := range r.Authors {
		cmd.Println(au)
	}
	cmd.Println()

	cmd.Println("Keywords (frequency in this abstract):")
	if len(r.Terms) == 0 {
		cmd.Println("(no keywords in the repository)")
		return
	}
	for _, tf := range r.Terms {
		cmd.Printf("%s: phrase=%d, tokens/meta=%d", tf.Term, tf.Phrase, tf.TokensMeta)
		if tf.Stems > 0 {
			cmd.Printf(", stems=%d", tf.Stems)
		}
		cmd.Println()
	}
}

func printKeywordReport(cmd *cobra.Command, r models.KeywordReport) {
	cmd.Printf("Keyword: %s\n\n", r.Keyword)

	cmd.Println("Occurrences per article:")
	for _, occ := range r.Occurrences {
		cmd.Printf(" - %s: phrase=%d, tokens/meta=%d\n", occ.Title, occ.Phrase, occ.TokensMeta)
	}

	cmd.Printf("\nTotal occurrences in the repository: %d\n\n", r.Total)

	cmd.Println("Articles tagged with the keyword:")
	for _, title := range r.Titles {
		cmd.Println(title)
	}
}
