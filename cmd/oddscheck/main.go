// Package main provides the oddscheck CLI for quick betting-math checks
// without a running server.
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/evaluator"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/oddsmath"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/risk"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "oddscheck",
	Short: "Betting math utilities for the odds engine",
	Long:  `Converts odds formats, evaluates single bets and lists risk tier policy from the command line.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("oddscheck %s (%s)\n", Version, GitCommit)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <american-odds>",
	Short: "Convert American odds to decimal odds and implied probability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		american, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("american odds must be an integer: %w", err)
		}

		dec, err := oddsmath.AmericanToDecimal(american)
		if err != nil {
			return err
		}
		implied, err := oddsmath.ImpliedProbability(american)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "american\t%+d\n", american)
		fmt.Fprintf(w, "decimal\t%.4f\n", dec)
		fmt.Fprintf(w, "implied probability\t%.4f\n", implied)
		return w.Flush()
	},
}

var (
	evalProbability float64
	evalKelly       float64
	evalStake       float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <american-odds>",
	Short: "Evaluate one side at the given odds against a true win probability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		american, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("american odds must be an integer: %w", err)
		}

		implied, err := oddsmath.ImpliedProbability(american)
		if err != nil {
			return err
		}
		ev, err := oddsmath.ExpectedValue(evalProbability, american, evalStake)
		if err != nil {
			return err
		}
		kelly, err := oddsmath.KellyFraction(evalProbability, american, evalKelly)
		if err != nil {
			return err
		}

		edge := oddsmath.Edge(evalProbability, implied)
		rating := evaluator.RateExpectedValue(ev)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "american\t%+d\n", american)
		fmt.Fprintf(w, "implied probability\t%.4f\n", implied)
		fmt.Fprintf(w, "true probability\t%.4f\n", evalProbability)
		fmt.Fprintf(w, "edge\t%+.4f\n", edge)
		fmt.Fprintf(w, "expected value\t%+.2f per %.0f staked\n", ev, evalStake)
		fmt.Fprintf(w, "kelly fraction\t%.4f\n", kelly)
		fmt.Fprintf(w, "rating\t%s\n", rating)
		if err := w.Flush(); err != nil {
			return err
		}

		if edge <= 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no value at this price")
		}
		return nil
	},
}

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List the risk tiers and their thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "tier\tmin prob\tmax corr\tmin conf\tkelly mult\tmax legs")
		for _, tier := range risk.AllTiers() {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n",
				tier.Name,
				tier.MinProbability,
				tier.MaxCorrelation,
				tier.MinConfidence,
				tier.KellyMultiplier,
				tier.MaxLegs,
			)
		}
		return w.Flush()
	},
}

var parlayCmd = &cobra.Command{
	Use:   "parlay <american-odds>...",
	Short: "Combine two or more American odds into parlay odds",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		combined := 1.0
		for _, arg := range args {
			american, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("american odds must be integers: %w", err)
			}
			dec, err := oddsmath.AmericanToDecimal(american)
			if err != nil {
				return err
			}
			combined *= dec
		}

		americanOut, err := oddsmath.DecimalToAmerican(combined)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "legs\t%d\n", len(args))
		fmt.Fprintf(w, "combined decimal\t%.4f\n", combined)
		fmt.Fprintf(w, "combined american\t%+d\n", int(math.Round(americanOut)))
		fmt.Fprintf(w, "break-even probability\t%.4f\n", 1/combined)
		return w.Flush()
	},
}

func init() {
	evaluateCmd.Flags().Float64VarP(&evalProbability, "probability", "p", 0, "True win probability in (0,1)")
	evaluateCmd.Flags().Float64VarP(&evalKelly, "kelly", "k", 0.25, "Fractional Kelly multiplier")
	evaluateCmd.Flags().Float64VarP(&evalStake, "stake", "s", 100, "Stake for expected value")
	evaluateCmd.MarkFlagRequired("probability")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(tiersCmd)
	rootCmd.AddCommand(parlayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
