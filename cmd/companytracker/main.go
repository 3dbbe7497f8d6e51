// Company Reputation Tracker — fetches public mentions of tracked
// companies, scores their sentiment, and stores the results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"CompanyTracker/internal/app"
	"CompanyTracker/internal/config"
	"CompanyTracker/internal/logging"
)

var cfg config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "companytracker",
	Short: "Track public mentions of companies and their sentiment",
	Long: `Company Reputation Tracker
Fetches news articles mentioning tracked companies, extracts their
content, scores sentiment, and stores the enriched mentions for the
dashboard.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			cfg = config.LoadFile(configFile)
		} else {
			cfg = config.Load()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: env COMPANY_TRACKER_CONFIG)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(processAllCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

// withApp builds the application, runs fn, and tears down storage.
func withApp(fn func(ctx context.Context, a *app.Application) error) error {
	ctx := context.Background()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(ctx, application)
}

func printJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(payload))
	return nil
}

var processCmd = &cobra.Command{
	Use:   "process [company-id]",
	Short: "Run the ingestion pipeline for one company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		companyID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid company id %q", args[0])
		}
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(func(ctx context.Context, a *app.Application) error {
			return printJSON(a.ProcessCompany(ctx, companyID, limit))
		})
	},
}

var processAllCmd = &cobra.Command{
	Use:   "process-all",
	Short: "Run the ingestion pipeline for every company",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(func(ctx context.Context, a *app.Application) error {
			summary, err := a.ProcessAll(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Printf("Pipeline completed. Processed %d companies, added %d new mentions.\n",
				summary.CompaniesProcessed, summary.TotalNewMentions)
			return printJSON(summary)
		})
	},
}

func init() {
	processCmd.Flags().Int("limit", 0, "maximum number of articles to process")
	processAllCmd.Flags().Int("limit", 0, "maximum number of articles per company")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new company to track",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}

		rawAliases, _ := cmd.Flags().GetString("aliases")
		var aliases []string
		if rawAliases != "" {
			aliases = strings.Split(rawAliases, ",")
		}

		return withApp(func(ctx context.Context, a *app.Application) error {
			company, err := a.AddCompany(ctx, name, aliases)
			if err != nil {
				return fmt.Errorf("add company: %w", err)
			}
			fmt.Printf("Added company: %s (ID: %d)\n", company.Name, company.ID)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().String("name", "", "company name (required)")
	addCmd.Flags().String("aliases", "", "comma-separated alternate names")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.Application) error {
			companies, err := a.Companies(ctx)
			if err != nil {
				return fmt.Errorf("list companies: %w", err)
			}

			if len(companies) == 0 {
				fmt.Println("No companies found. Add one with: companytracker add --name NAME")
				return nil
			}

			fmt.Println("Available companies:")
			for _, company := range companies {
				fmt.Printf("  ID %d: %s (Aliases: %s)\n",
					company.ID, company.Name, strings.Join(company.Aliases, ", "))
			}
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Regenerate the static dashboard JSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			cfg.Export.Dir = dir
		}

		return withApp(func(ctx context.Context, a *app.Application) error {
			if err := a.Export(ctx); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Println("Static data generation complete.")
			return nil
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		return withApp(func(_ context.Context, a *app.Application) error {
			return a.Serve(addr)
		})
	},
}

func init() {
	exportCmd.Flags().String("dir", "", "output directory (default from config)")
	serveCmd.Flags().String("addr", "", "listen address (default from config)")
}
