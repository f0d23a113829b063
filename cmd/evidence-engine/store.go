// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/store"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local evidence-card store (save, list, export)",
	Long: `Store keeps cut evidence cards in a local SQLite database with full-text
search over tags and card content. Use subcommands to save cards, query
them, or export the whole store to YAML.`,
}

// --- save subcommand ---

var storeSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a card from a JSON document on stdin",
	Long: `Save reads one card as JSON from stdin and persists it. Pipe the output
of "cut --json" together with the argument:

  evidence-engine cut --url ... --argument "..." --json | evidence-engine store save --argument "..."`,
	RunE: runStoreSave,
}

func runStoreSave(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var card types.Card
	if err := json.NewDecoder(os.Stdin).Decode(&card); err != nil {
		return fmt.Errorf("reading card from stdin: %w", err)
	}
	if argument, _ := cmd.Flags().GetString("argument"); argument != "" {
		card.Argument = argument
	}

	saved, err := s.Save(context.Background(), card)
	if err != nil {
		return err
	}
	fmt.Printf("Saved card %s\n", saved.ID)
	return nil
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List stored cards, optionally filtered by full-text search",
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := store.ListOptions{}
	if len(args) > 0 {
		opts.Query = strings.Join(args, " ")
	}
	opts.Argument, _ = cmd.Flags().GetString("argument")
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")

	cards, err := s.List(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}

	if len(cards) == 0 {
		fmt.Println("No cards found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-40s  %-40s  %s\n", "ID", "Tag", "Argument", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))
	for _, c := range cards {
		tag := c.Tag
		if len(tag) > 40 {
			tag = tag[:37] + "..."
		}
		argument := c.Argument
		if len(argument) > 40 {
			argument = argument[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-40s  %-40s  %s\n",
			c.ID, tag, argument, c.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(os.Stdout, "\n%d cards\n", len(cards))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the card store to YAML",
	RunE:  runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	path, err := s.ExportYAML(context.Background(), store.ListOptions{})
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := pipelineConfig().Store
	if dir, _ := cmd.Flags().GetString("store-dir"); dir != "" {
		cfg.Dir = dir
	}
	return store.NewStore(cfg)
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "", "store directory (default: evidence)")

	storeSaveCmd.Flags().String("argument", "", "the argument the card was cut for")

	storeListCmd.Flags().String("argument", "", "filter by exact argument")
	storeListCmd.Flags().Int("limit", 0, "maximum cards to list (0 = default)")
	storeListCmd.Flags().Bool("json", false, "output cards as JSON")

	storeCmd.AddCommand(storeSaveCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
