package cli

import (
	"github.com/spf13/cobra"
)

var titlesLocale string

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Parse an article file and add it to the repository",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, s *session) (bool, error) {
		a, err := s.app.App.AddFile(cmd.Context(), args[0])
		if err != nil {
			return false, err
		}
		cmd.Printf("Added: %s\n", a.Title)
		return true, nil
	}),
}

var loadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Add every .txt article of a directory",
	Long: `Parses every .txt file of the directory concurrently and adds the
articles in file name order. Without an argument the resources_dir of the
config is used. Malformed files and duplicate titles are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, s *session) (bool, error) {
		dir := s.cfg.ResourcesDir
		if len(args) == 1 {
			dir = args[0]
		}

		res, err := s.app.App.LoadDirectory(cmd.Context(), dir)
		if err != nil {
			return false, err
		}
		cmd.Printf("Added %d, skipped %d\n", res.Added, res.Skipped)
		return res.Added > 0, nil
	}),
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "List article titles in collation order",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, s *session) (bool, error) {
		titles, err := s.app.App.Titles(titlesLocale)
		if err != nil {
			return false, err
		}
		printList(cmd, titles, "No articles.")
		return false, nil
	}),
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every article and delete the stored snapshot",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, s *session) (bool, error) {
		if err := s.app.App.Clear(cmd.Context()); err != nil {
			return false, err
		}
		cmd.Println("Repository cleared.")
		return false, nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show repository and index statistics",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, s *session) (bool, error) {
		st := s.app.App.Stats()

		cmd.Printf("Storage:  %s (%s)\n", s.cfg.StoragePath, s.app.StorageApp.Driver())
		cmd.Printf("Articles: %d\n", st.Articles)
		cmd.Printf("Keywords: %d (height %d, max imbalance %d)\n",
			st.Keywords, st.KeywordTree.Height, st.KeywordTree.MaxImbalance)
		cmd.Printf("Authors:  %d (height %d, max imbalance %d)\n",
			st.Authors, st.AuthorTree.Height, st.AuthorTree.MaxImbalance)
		cmd.Printf("Stemming: %t\n", st.Stemming)

		if err := s.app.App.Check(); err != nil {
			cmd.Printf("Invariants: %v\n", err)
		} else {
			cmd.Println("Invariants: ok")
		}
		return false, nil
	}),
}

func init() {
	titlesCmd.Flags().StringVar(&titlesLocale, "locale", "", "collation locale (default the configured one)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(titlesCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)
}

func printList(cmd *cobra.Command, items []string, empty string) {
	if len(items) == 0 {
		cmd.Println(empty)
		return
	}
	for _, item := range items {
		cmd.Println(item)
	}
}
