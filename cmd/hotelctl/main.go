package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"hotel_rating/internal/adapters/observability"
	"hotel_rating/internal/domain"
	"hotel_rating/internal/shared"
)

// CLI flags
var (
	timeout   time.Duration
	verbosity int
	workers   int
	elevatePw string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hotelctl",
		Short:         "hotelctl - query and administer the hotel rating store",
		Long:          `hotelctl logs in with the DB_* environment, resolves where the hotel schema lives and runs one operation, printing JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Deadline for the whole command")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug)")
	rootCmd.PersistentFlags().StringVar(&elevatePw, "elevate", "", "Elevate with this password before running")

	ratingCmd := &cobra.Command{
		Use:   "rating NAME...",
		Short: "Aggregated rating for each hotel name fragment",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withRuntime(runRatings),
	}
	ratingCmd.Flags().IntVarP(&workers, "workers", "w", 4, "Concurrent lookups")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Hotels meeting minimum scores",
		RunE:  withRuntime(runSearch),
	}
	searchCmd.Flags().String("city", "", "City (all cities when empty)")
	for _, c := range domain.Criteria {
		searchCmd.Flags().String(string(c), "", "Minimum "+string(c)+" score")
	}

	adminCmd := &cobra.Command{Use: "admin", Short: "Feature and seed word writes (needs --elevate)"}
	seedCmd := &cobra.Command{
		Use:   "add-seed FEATURE PHRASE",
		Short: "Add a seed phrase to a feature",
		Args:  cobra.ExactArgs(2),
		RunE:  withRuntime(runAddSeed),
	}
	seedCmd.Flags().Int("weight", 1, "1 for positive, -1 for negative")
	adminCmd.AddCommand(
		&cobra.Command{
			Use:   "add-feature NAME",
			Short: "Add an active feature",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, args []string) (any, error) {
				id, err := rt.Admin.AddFeature(ctx, args[0])
				return map[string]int64{"id": id}, err
			}),
		},
		seedCmd,
	)

	reportCmd := &cobra.Command{
		Use:   "report CITY",
		Short: "City listing plus top rated hotels",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, cmd *cobra.Command, args []string) (any, error) {
			top, _ := cmd.Flags().GetInt("top")
			return rt.Q.CityReport(ctx, args[0], top)
		}),
	}
	reportCmd.Flags().Int("top", 5, "Number of top rated hotels")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "capability",
			Short: "Show the session and where the hotel schema was found",
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, _ []string) (any, error) {
				return map[string]any{"status": rt.S.Status(), "capability": rt.S.Capability(ctx)}, nil
			}),
		},
		ratingCmd,
		&cobra.Command{
			Use:   "reviews NAME",
			Short: "Newest reviews of a hotel (exact name)",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, args []string) (any, error) {
				return rt.Q.GetReviews(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "city CITY",
			Short: "Hotels of a city with aggregate scores",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, args []string) (any, error) {
				return rt.Q.ListByCity(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "cities",
			Short: "Distinct cities",
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, _ []string) (any, error) {
				return rt.Q.Cities(ctx)
			}),
		},
		searchCmd,
		&cobra.Command{
			Use:   "features",
			Short: "Active features",
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, _ []string) (any, error) {
				return rt.Q.Features(ctx)
			}),
		},
		&cobra.Command{
			Use:   "explore [NAMESPACE TABLE]",
			Short: "List visible tables, or dump the first rows of one",
			Args:  func(cmd *cobra.Command, args []string) error {
				if len(args) != 0 && len(args) != 2 {
					return fmt.Errorf("expected no arguments or NAMESPACE TABLE")
				}
				return nil
			},
			RunE: withRuntime(func(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, args []string) (any, error) {
				if len(args) == 2 {
					return rt.Q.TableData(ctx, args[0], args[1])
				}
				return rt.Q.Namespaces(ctx)
			}),
		},
		reportCmd,
		adminCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("hotelctl failed")
		os.Exit(1)
	}
}

type runFunc func(ctx context.Context, rt *shared.Runtime, cmd *cobra.Command, args []string) (any, error)

// withRuntime logs in, optionally elevates, runs fn and prints its result.
func withRuntime(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := shared.Load()
		log.Logger = observability.NewConsoleLogger(os.Stderr, cfg.LogFile).Level(level(verbosity))

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		rt, err := shared.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		c, err := rt.Login(ctx, cfg)
		if err != nil {
			return err
		}
		if elevatePw != "" {
			if c, err = rt.S.Elevate(ctx, elevatePw); err != nil {
				return err
			}
		}
		if !c.HasExpectedTables {
			log.Warn().Str("diagnostic", c.DiagnosticMessage).Msg("hotel schema not resolved")
		}

		out, err := fn(ctx, rt, cmd, args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
}

func level(v int) zerolog.Level {
	if v >= 1 {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// runRatings looks names up concurrently, at most --workers at a time.
func runRatings(ctx context.Context, rt *shared.Runtime, _ *cobra.Command, args []string) (any, error) {
	return lookupAll(ctx, args, workers, rt.Q.GetRating)
}

type ratingResult struct {
	Query  string              `json:"query"`
	Rating *domain.HotelRating `json:"rating,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// lookupAll returns only after every started lookup has finished.
func lookupAll(ctx context.Context, names []string, n int, get func(context.Context, string) (domain.HotelRating, error)) ([]ratingResult, error) {
	out := make([]ratingResult, len(names))
	sem := semaphore.NewWeighted(int64(max(n, 1)))
	var wg sync.WaitGroup

	for i, name := range names {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer sem.Release(1)

			out[i].Query = name
			r, err := get(ctx, name)
			if err != nil {
				out[i].Error = err.Error()
				return
			}
			out[i].Rating = &r
		}(i, name)
	}
	wg.Wait()
	return out, nil
}

func runSearch(ctx context.Context, rt *shared.Runtime, cmd *cobra.Command, _ []string) (any, error) {
	city, _ := cmd.Flags().GetString("city")
	criteria := domain.SearchCriteria{}
	for _, c := range domain.Criteria {
		s, _ := cmd.Flags().GetString(string(c))
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", c, err)
		}
		criteria[c] = &v
	}
	return rt.Q.Search(ctx, city, criteria)
}

func runAddSeed(ctx context.Context, rt *shared.Runtime, cmd *cobra.Command, args []string) (any, error) {
	weight, _ := cmd.Flags().GetInt("weight")
	id, err := rt.Admin.AddSeedWord(ctx, args[0], args[1], weight)
	return map[string]int64{"id": id}, err
}
