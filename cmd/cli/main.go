package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cotdex/domain/network"
	"cotdex/internal/config"
	"cotdex/internal/container"
	"cotdex/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options shared by every subcommand
type rootOptions struct {
	synthetic bool
	seed      int64
}

func main() {
	_ = godotenv.Load()

	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "cotdex-cli",
		Short:         "Query the comorbidity network from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.synthetic, "synthetic", false, "Use a generated in-memory network instead of DATABASE_URL")
	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 42, "Random seed for --synthetic")

	rootCmd.AddCommand(
		newNetworkCmd(opts),
		newSingleCmd(opts),
		newSubCmd(opts),
		newCheckCmd(opts),
		newConnectedCmd(opts),
		newSummaryCmd(opts),
		newCacheCmd(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// thresholdFlags maps request keys to flag names.
var thresholdFlags = map[string]string{
	network.KeyFollowUp:  "follow-up",
	network.KeyRRMin:     "rr-min",
	network.KeyRRMax:     "rr-max",
	network.KeyChisqMax:  "chisq-max",
	network.KeyFisherMax: "fisher-max",
}

func addThresholdFlags(cmd *cobra.Command) {
	cmd.Flags().String(thresholdFlags[network.KeyFollowUp], "", "Follow-up window (positive integer)")
	cmd.Flags().String(thresholdFlags[network.KeyRRMin], "", "Minimum relative risk (inclusive)")
	cmd.Flags().String(thresholdFlags[network.KeyRRMax], "", "Maximum relative risk (inclusive)")
	cmd.Flags().String(thresholdFlags[network.KeyChisqMax], "", "Maximum adjusted chi-square p-value")
	cmd.Flags().String(thresholdFlags[network.KeyFisherMax], "", "Maximum adjusted Fisher p-value")
}

// flagLookup resolves request keys against explicitly set flags, so unset
// flags fall back to the profile defaults.
func flagLookup(cmd *cobra.Command) func(string) (string, bool) {
	return func(key string) (string, bool) {
		name, ok := thresholdFlags[key]
		if !ok {
			return "", false
		}
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			return "", false
		}
		return f.Value.String(), true
	}
}

func buildContainer(ctx context.Context, opts *rootOptions) (*container.Container, error) {
	if opts.synthetic {
		cfg := &config.Config{LogLevel: os.Getenv("LOG_LEVEL")}
		cfg.Cache.Backend = "memory"
		c, err := container.New(cfg)
		if err != nil {
			return nil, err
		}
		genCfg := testkit.DefaultGeneratorConfig()
		genCfg.Seed = opts.seed
		return c, c.InitWithStore(testkit.NewGenerator(genCfg).Store())
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	return c, c.Init(ctx)
}

// withContainer runs fn against a fully initialised container
func withContainer(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, c *container.Container) error) error {
	ctx := cmd.Context()
	c, err := buildContainer(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	return fn(ctx, c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPayload(payload []byte) error {
	return printJSON(json.RawMessage(payload))
}

func newNetworkCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Print the whole network for a follow-up window",
		Long: `Print the whole network filtered by thresholds. The relative-risk range
applies to log relative risk.

Example: cotdex-cli network --follow-up 1 --rr-max 1.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := network.WholeNetworkProfile.ParseParams(flagLookup(cmd))
			if err != nil {
				return err
			}
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				payload, err := c.Network.MainNetwork(ctx, params)
				if err != nil {
					return err
				}
				return printPayload(payload)
			})
		},
	}
	addThresholdFlags(cmd)
	return cmd
}

func newSingleCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "single [disease]",
		Short: "Print every association of one disease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := network.SingleDiseaseProfile.ParseParams(flagLookup(cmd))
			if err != nil {
				return err
			}
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				payload, err := c.Network.SingleDisease(ctx, params, network.DiseaseCode(args[0]))
				if err != nil {
					return err
				}
				return printPayload(payload)
			})
		},
	}
	addThresholdFlags(cmd)
	return cmd
}

func newSubCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub [disease...]",
		Short: "Print the common neighbourhood of one or more diseases",
		Long: `Print the diseases connected to every given disease, with the associations
among them. With two or more diseases the first and last are pinned.

Example: cotdex-cli sub I10 E11 --follow-up 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := network.SubNetworkProfile.ParseParams(flagLookup(cmd))
			if err != nil {
				return err
			}
			seeds, err := network.NormalizeSeeds(args)
			if err != nil {
				return err
			}
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				payload, err := c.Network.SubNetwork(ctx, params, seeds)
				if err != nil {
					return err
				}
				return printPayload(payload)
			})
		},
	}
	addThresholdFlags(cmd)
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [disease...]",
		Short: "Check whether diseases lie in one connected component",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds := make([]network.DiseaseCode, len(args))
			for i, a := range args {
				seeds[i] = network.DiseaseCode(a)
			}
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				res, err := c.Network.CheckConnection(ctx, seeds)
				if err != nil {
					return err
				}
				return printJSON(res)
			})
		},
	}
}

func newConnectedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "connected [disease]",
		Short: "List the diseases directly associated with a disease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				codes, err := c.Network.ConnectedDiseases(ctx, network.DiseaseCode(args[0]))
				if err != nil {
					return err
				}
				return printJSON(map[string]interface{}{"connected": codes})
			})
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var diseases string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print descriptive statistics of a filtered network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := network.WholeNetworkProfile.ParseParams(flagLookup(cmd))
			if err != nil {
				return err
			}
			var seeds []network.DiseaseCode
			if strings.TrimSpace(diseases) != "" {
				if seeds, err = network.ParseSeeds(diseases); err != nil {
					return err
				}
			}
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				summary, err := c.Network.Summary(ctx, params, seeds)
				if err != nil {
					return err
				}
				return printJSON(summary)
			})
		},
	}
	addThresholdFlags(cmd)
	cmd.Flags().StringVar(&diseases, "diseases", "", "Comma-separated diseases to restrict the summary to")
	return cmd
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Drop every cached view",
		Long: `Drop every cached view. Only meaningful with CACHE_BACKEND=badger, where the
cache outlives the process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, opts, func(ctx context.Context, c *container.Container) error {
				if err := c.Network.FlushCache(ctx); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, "cache flushed")
				return nil
			})
		},
	})
	return cmd
}
