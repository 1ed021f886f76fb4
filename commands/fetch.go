package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"regwatch/application"
	"regwatch/models/entities"
	"regwatch/services/categorizer"
	"regwatch/services/tracker"
	"regwatch/utils/dates"

	"github.com/spf13/cobra"
)

var (
	fetchSources []string
	fetchTopics  []string
	fetchSearch  string
	fetchPage    int
	fetchJSON    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one refresh and print the matching updates",
	Long: `Fetches every registered source once, then prints one page of the
merged timeline. Filters combine: an update must match the sources, the
topics and the search text when they are given.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSliceVarP(&fetchSources, "source", "s", nil, "source keys to keep")
	fetchCmd.Flags().StringSliceVarP(&fetchTopics, "topic", "t", nil, "topics to keep")
	fetchCmd.Flags().StringVarP(&fetchSearch, "search", "q", "", "free text search")
	fetchCmd.Flags().IntVarP(&fetchPage, "page", "p", 1, "page number")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output the page as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if fetchPage < 1 {
		return fmt.Errorf("invalid page %d", fetchPage)
	}

	core, err := application.NewCore()
	if err != nil {
		return err
	}
	defer core.DB.Shutdown()

	state, err := filterState(core.Categorizer, fetchSources, fetchTopics, fetchSearch)
	if err != nil {
		return err
	}

	snapshot := core.Tracker.Refresh(cmd.Context())
	if snapshot.Status == tracker.StatusFailed {
		return errors.New("no source could be reached")
	}

	result := core.Tracker.Query(state, fetchPage)
	if fetchJSON {
		data, errJSON := json.MarshalIndent(result, "", "  ")
		if errJSON != nil {
			return fmt.Errorf("failed to marshal results: %w", errJSON)
		}
		cmd.Println(string(data))
		return nil
	}

	printPage(cmd, result, time.Now())
	return nil
}

func filterState(categorizer categorizer.Service, sources, topics []string, search string) (entities.FilterState, error) {
	state := entities.FilterState{Search: search, Sources: sources}
	for _, name := range topics {
		topic, err := categorizer.ResolveTopic(name)
		if err != nil {
			return state, err
		}
		state.Topics = append(state.Topics, topic)
	}
	return state, nil
}

func printPage(cmd *cobra.Command, result tracker.QueryResult, now time.Time) {
	cmd.Println(result.Summary)
	if len(result.Page.Updates) == 0 {
		cmd.Println("No updates match.")
		return
	}

	cmd.Println()
	for _, u := range result.Page.Updates {
		topics := make([]string, 0, len(u.Categories))
		for _, c := range u.Categories {
			topics = append(topics, string(c))
		}
		cmd.Printf("[%s] %s · %s\n", u.SourceLabel, dates.Relative(u.PubDate, now), u.Title)
		cmd.Printf("    %s\n", strings.Join(topics, ", "))
		if u.Link != "" {
			cmd.Printf("    %s\n", u.Link)
		}
	}

	if result.Page.HasMore {
		cmd.Println()
		cmd.Printf("More on page %d.\n", result.Page.Number+1)
	}
}
