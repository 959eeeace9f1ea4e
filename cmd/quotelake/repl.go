package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"quotelake/internal/catalog"
	"quotelake/internal/report"
)

// sqlKeywords seeds tab completion alongside the catalog's relation names.
var sqlKeywords = []prompt.Suggest{
	{Text: "SELECT", Description: "query rows"},
	{Text: "FROM", Description: ""},
	{Text: "WHERE", Description: ""},
	{Text: "GROUP BY", Description: ""},
	{Text: "ORDER BY", Description: ""},
	{Text: "LIMIT", Description: ""},
	{Text: "COUNT(*)", Description: ""},
	{Text: "DESCRIBE", Description: "show relation columns"},
	{Text: "SHOW TABLES", Description: "list relations"},
	{Text: "SUMMARIZE", Description: "column statistics"},
}

// runREPL drives an interactive SQL session against the catalog.
func runREPL(ctx context.Context, m *catalog.Manager, limit int) error {
	relations := relationSuggestions(ctx, m)

	fmt.Printf("quotelake %s interactive SQL (DuckDB). Type 'exit' to leave.\n", Version)

	executor := func(in string) {
		in = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(in), ";"))
		if in == "" {
			return
		}
		if isExitCommand(in) {
			return
		}

		table, err := m.QueryTable(ctx, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		report.RenderTable(os.Stdout, table, limit)
	}

	completer := func(d prompt.Document) []prompt.Suggest {
		word := d.GetWordBeforeCursor()
		if word == "" {
			return nil
		}
		suggestions := append([]prompt.Suggest{}, sqlKeywords...)
		suggestions = append(suggestions, relations...)
		return prompt.FilterHasPrefix(suggestions, word, true)
	}

	p := prompt.New(
		executor,
		completer,
		prompt.OptionTitle("quotelake"),
		prompt.OptionPrefix("quotelake> "),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && isExitCommand(strings.TrimSpace(in))
		}),
	)
	p.Run()
	return nil
}

func isExitCommand(in string) bool {
	switch strings.ToLower(in) {
	case "exit", "quit", "\\q", ".quit":
		return true
	}
	return false
}

// relationSuggestions lists current relations for completion. An empty
// catalog just means no extra suggestions.
func relationSuggestions(ctx context.Context, m *catalog.Manager) []prompt.Suggest {
	table, err := m.QueryTable(ctx, "SHOW TABLES")
	if err != nil {
		return nil
	}
	var out []prompt.Suggest
	for _, row := range table.Rows {
		out = append(out, prompt.Suggest{
			Text:        fmt.Sprintf("%v", row[0]),
			Description: "relation",
		})
	}
	return out
}
