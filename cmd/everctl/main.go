// Package main implements the everctl CLI for manual operations against an
// everaidd server: health checks, seeding, pack inspection, and pack
// export/import including QR tile handling.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
	"github.com/everaidhq/everaid/pkg/client"
	"github.com/everaidhq/everaid/pkg/packfile"
)

var (
	serverURL string
	anonKey   string
	version   = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "everctl",
	Short: "CLI for everaidd server operations",
	Long: `everctl is a command-line interface for an everaidd server.
It provides commands for checking health, seeding the pack store,
inspecting packs, and moving packs between devices as files or QR tiles.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8787", "everaidd server URL")
	rootCmd.PersistentFlags().StringVar(&anonKey, "key", os.Getenv("EVERAID_ANON_KEY"), "anon key for pack routes")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reseedCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(qrCmd)
}

func newAPI() *client.API {
	return client.NewAPI(serverURL, anonKey, zap.NewNop())
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check everaidd server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		if err := newAPI().Health(ctx); err != nil {
			return fmt.Errorf("server unhealthy: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the starter packs (no-op if packs exist)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		result, err := newAPI().Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var reseedCmd = &cobra.Command{
	Use:   "reseed",
	Short: "Wipe all packs and seed fresh (destructive)",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("reseed deletes every pack; re-run with --force to confirm")
		}

		ctx, cancel := cmdContext()
		defer cancel()

		result, err := newAPI().Reseed(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		ctx, cancel := cmdContext()
		defer cancel()

		records, err := newAPI().ListPacks(ctx, pack.Category(category))
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Printf("%-34s  %-8s %-10s %2dm  %s\n", rec.ID, rec.Category, rec.Urgency, rec.EstMinutes, rec.Title)
		}
		fmt.Printf("%d packs\n", len(records))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search packs by keyword relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := cmdContext()
		defer cancel()

		results, err := newAPI().SearchPacks(ctx, strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		for _, res := range results {
			fmt.Printf("%.2f  %-34s  %s\n", res.Score, res.Record.ID, res.Record.Title)
		}
		fmt.Printf("%d matches\n", len(results))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one pack as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		rec, err := newAPI().GetPack(ctx, args[0])
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a pack to a portable file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		author, _ := cmd.Flags().GetString("author")

		ctx, cancel := cmdContext()
		defer cancel()

		rec, err := newAPI().GetPack(ctx, args[0])
		if err != nil {
			return err
		}
		data, err := packfile.Export(rec.Pack(), rec.ClientSteps(), author)
		if err != nil {
			return err
		}

		if output == "" || output == "-" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", args[0], output)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a pack file and upload it to the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		p, steps, err := packfile.Import(data)
		if err != nil {
			return fmt.Errorf("invalid pack file: %w", err)
		}

		ctx, cancel := cmdContext()
		defer cancel()

		id, err := newAPI().CreatePack(ctx, pack.RecordOf(p, steps))
		if err != nil {
			return err
		}
		fmt.Printf("imported %q as %s\n", p.Title, id)
		return nil
	},
}

var qrCmd = &cobra.Command{
	Use:   "qr",
	Short: "Split pack files into QR tiles and join them back",
}

var qrSplitCmd = &cobra.Command{
	Use:   "split <packfile>",
	Short: "Split an exported pack file into QR-sized tiles (JSON lines)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		for _, tile := range packfile.Tiles(data) {
			encoded, err := json.Marshal(tile)
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
		}
		return nil
	},
}

var qrJoinCmd = &cobra.Command{
	Use:   "join <tiles-file>",
	Short: "Reassemble a pack file from scanned tiles (JSON lines)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		var tiles []packfile.Tile
		dec := json.NewDecoder(f)
		for dec.More() {
			var tile packfile.Tile
			if err := dec.Decode(&tile); err != nil {
				return fmt.Errorf("reading tiles: %w", err)
			}
			tiles = append(tiles, tile)
		}

		data, err := packfile.ReassembleTiles(tiles)
		if err != nil {
			return err
		}

		if output == "" || output == "-" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", output)
		return nil
	},
}

func init() {
	reseedCmd.Flags().Bool("force", false, "confirm the destructive reseed")
	listCmd.Flags().String("category", "", "filter by category (Health, Survive, Fix, Speak)")
	searchCmd.Flags().Int("limit", 10, "maximum results")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	exportCmd.Flags().String("author", "", "author recorded in the export")
	qrJoinCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	qrCmd.AddCommand(qrSplitCmd)
	qrCmd.AddCommand(qrJoinCmd)
}
