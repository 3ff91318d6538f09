package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zatekoja/hospitalcostsearch/internal/adapters/providers/location"
	"github.com/zatekoja/hospitalcostsearch/internal/application/services"
	"github.com/zatekoja/hospitalcostsearch/internal/bootstrap"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	"github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/searchapi"
	"github.com/zatekoja/hospitalcostsearch/pkg/config"
	"github.com/zatekoja/hospitalcostsearch/pkg/secrets"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	profilesFile string
	baseURL      string
	jsonOutput   bool
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "hospital-search",
		Short:        "Find nearby hospitals and estimated costs for your symptoms and insurance",
		SilenceUsage: true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.profilesFile, "profiles", "", "JSON file of profiles and eligibility records to seed the store with")
	flags.StringVar(&opts.baseURL, "base-url", "", "Override the hospital search service URL")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newHealthCmd(opts))
	rootCmd.AddCommand(newMockCmd())

	return rootCmd
}

func setupLogger(w io.Writer, verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()
}

// backend holds the wired search service for one CLI invocation
type backend struct {
	service *services.SearchService
	close   bootstrap.CloseFunc
}

func newBackend(ctx context.Context, opts *globalOptions, loc providers.LocationProvider) (*backend, error) {
	if _, err := secrets.ApplyVault(ctx, secrets.VaultConfigFromEnv()); err != nil {
		return nil, fmt.Errorf("loading Vault secrets: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.profilesFile != "" {
		cfg.Store.SeedFile = opts.profilesFile
	}
	if opts.baseURL != "" {
		cfg.Search.BaseURL = opts.baseURL
	}
	if loc == nil {
		loc = location.NewFromConfig(&cfg.Location)
	}

	repo, closeStore, err := bootstrap.NewProfileRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening profile store: %w", err)
	}

	svc, err := bootstrap.NewSearchService(cfg, repo, loc, nil)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("creating search service: %w", err)
	}
	return &backend{service: svc, close: closeStore}, nil
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		userID     string
		symptoms   string
		lat, lng   float64
		noLocation bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for hospitals that treat the given symptoms",
		RunE: func(cmd *cobra.Command, args []string) error {
			latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
			if latSet != lngSet {
				return fmt.Errorf("--lat and --lng must be given together")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var loc providers.LocationProvider
			if noLocation {
				loc = location.DeniedLocationProvider{}
			}
			rt, err := newBackend(ctx, opts, loc)
			if err != nil {
				return err
			}
			defer rt.close()

			params := services.SearchParams{UserID: userID, Symptoms: symptoms}
			if latSet {
				params.Location = &providers.Coordinates{Latitude: lat, Longitude: lng}
			}

			outcome, err := rt.service.Search(ctx, params)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), outcome)
			}
			renderOutcome(cmd.OutOrStdout(), outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID whose stored insurance is used (required)")
	cmd.Flags().StringVar(&symptoms, "symptoms", "", "Symptoms or condition to search for (required)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Search latitude (overrides the configured location)")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Search longitude (overrides the configured location)")
	cmd.Flags().BoolVar(&noLocation, "no-location", false, "Behave as if location access was refused")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("symptoms")

	return cmd
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	var (
		userID string
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether the user's stored insurance is currently valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newBackend(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			out := cmd.OutOrStdout()
			if local {
				check, err := rt.service.CheckStoredCoverage(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(out, check)
				}
				renderCoverageCheck(out, check)
				return nil
			}

			outcome, err := rt.service.Validate(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(out, outcome)
			}
			renderValidation(out, outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID whose stored insurance is checked (required)")
	cmd.Flags().BoolVar(&local, "local", false, "Only check the stored plan dates, without calling the service")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newHealthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report the hospital search service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newBackend(cmd.Context(), opts, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			health, err := rt.service.Health(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), health)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Service, health.Status)
			return nil
		},
	}
}

func newMockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mock",
		Short: "Print the built-in sample search response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(searchapi.MockResponseJSON())
			return err
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
