package commands

import (
	"bytes"
	"testing"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/services/categorizer"
	"regwatch/services/filter"
	"regwatch/services/tracker"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["fetch"])
}

func TestFetchCmd_Flags(t *testing.T) {
	page := fetchCmd.Flags().Lookup("page")
	require.NotNil(t, page)
	assert.Equal(t, "p", page.Shorthand)
	assert.Equal(t, "1", page.DefValue)

	for _, name := range []string{"source", "topic", "search", "json"} {
		assert.NotNil(t, fetchCmd.Flags().Lookup(name), name)
	}
}

func TestFetchCmd_RejectsArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"fetch", "extra"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestFilterState(t *testing.T) {
	c := categorizer.New(constants.GetTopicTable())

	state, err := filterState(c, []string{"occ"}, []string{"bsa/aml", "Sanctions"}, "penalty")
	require.NoError(t, err)
	assert.Equal(t, entities.FilterState{
		Search:  "penalty",
		Sources: []string{"occ"},
		Topics:  []entities.Topic{constants.TopicBSAAML, constants.TopicSanctions},
	}, state)

	_, err = filterState(c, nil, []string{"weather"}, "")
	assert.Error(t, err)
}

func TestPrintPage(t *testing.T) {
	now := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	updates := []entities.RegulatoryUpdate{
		{Title: "Consent order issued", Link: "https://occ.example/1", PubDate: now.Add(-26 * time.Hour),
			SourceLabel: "OCC", Categories: []entities.Topic{constants.TopicEnforcement}},
		{Title: "Beneficial ownership FAQ", PubDate: now.Add(-10 * 24 * time.Hour),
			SourceLabel: "FinCEN", Categories: []entities.Topic{constants.TopicBSAAML}},
	}
	result := tracker.QueryResult{
		Summary: filter.Summary(2, 5),
		Page:    filter.Paginate(updates, 1, 1),
	}

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	printPage(cmd, result, now)

	out := buf.String()
	assert.Contains(t, out, "2 of 5 updates")
	assert.Contains(t, out, "[OCC] Yesterday · Consent order issued")
	assert.Contains(t, out, "    Enforcement")
	assert.Contains(t, out, "https://occ.example/1")
	assert.NotContains(t, out, "Beneficial ownership FAQ")
	assert.Contains(t, out, "More on page 2.")
}

func TestPrintPage_Empty(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	printPage(cmd, tracker.QueryResult{Summary: "0 of 3 updates"}, time.Now())

	assert.Contains(t, buf.String(), "No updates match.")
}
