package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find articles by keyword or author",
}

var searchKeywordCmd = &cobra.Command{
	Use:   "keyword [term]",
	Short: "List the titles tagged with a keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, s *session) (bool, error) {
		titles, err := s.app.App.SearchKeyword(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		printList(cmd, titles, "No results found.")
		return false, nil
	}),
}

var searchAuthorCmd = &cobra.Command{
	Use:   "author [name]",
	Short: "List the titles written by an author",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, s *session) (bool, error) {
		titles, err := s.app.App.SearchAuthor(strings.Join(args, " "))
		if err != nil {
			return false, err
		}
		printList(cmd, titles, "No results found.")
		return false, nil
	}),
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the keyword vocabulary in collation order",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, s *session) (bool, error) {
		printList(cmd, s.app.App.Keywords(), "No keywords.")
		return false, nil
	}),
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List the author vocabulary in collation order",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, s *session) (bool, error) {
		printList(cmd, s.app.App.Authors(), "No authors.")
		return false, nil
	}),
}

func init() {
	searchCmd.AddCommand(searchKeywordCmd)
	searchCmd.AddCommand(searchAuthorCmd)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(authorsCmd)
}
