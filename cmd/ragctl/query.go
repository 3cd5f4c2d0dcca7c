package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"docintel-be/internal/dto"
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	queryK        int
	queryDocument string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Retrieve the fragments most relevant to a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "top-k", "k", 0, "number of fragments (0 = server default)")
	queryCmd.Flags().StringVarP(&queryDocument, "document", "d", "", "restrict results to one document id")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	userId, err := parseUser()
	if err != nil {
		return err
	}

	var documentId *uuid.UUID
	if queryDocument != "" {
		id, err := uuid.Parse(queryDocument)
		if err != nil {
			return fmt.Errorf("invalid --document %q: %w", queryDocument, err)
		}
		documentId = &id
	}

	question := strings.Join(args, " ")
	fragments, err := retriever.Query(cmd.Context(), userId, question, queryK, documentId)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(dto.QueryResponse{Question: strings.TrimSpace(question), Sources: fragments}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printFragments(cmd, fragments)
	return nil
}

func printFragments(cmd *cobra.Command, fragments []rag.Fragment) {
	out := cmd.OutOrStdout()
	if len(fragments) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}
	for _, f := range fragments {
		// [N] document (score)
		fmt.Fprintf(out, "[%d] %s (%.3f)\n", f.SourceNumber, f.DocumentName, f.Score)
		fmt.Fprintln(out, f.Text)
		fmt.Fprintln(out)
	}
}
