// Command orderflow processes a canned demo order through the pipeline.
//
// Usage:
//
//	orderflow <scenario> [-fail-rate f] [-seed n] [-v]
//
// Scenarios select an order plus a payment failure rate; -fail-rate
// overrides the rate and -seed pins the random source for deterministic
// replays.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jzx17/orderflow/internal/scenario"
	"github.com/jzx17/orderflow/pkg/inject"
	"github.com/jzx17/orderflow/pkg/order"
	"github.com/jzx17/orderflow/pkg/orchestrator"
	"github.com/jzx17/orderflow/pkg/step"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("orderflow", flag.ContinueOnError)
	fs.SetOutput(stderr)

	failRate := fs.Float64("fail-rate", -1, "payment failure rate override (0.0-1.0)")
	seed := fs.Int64("seed", 0, "random seed for deterministic replays")
	verbose := fs.Bool("v", false, "enable debug logging")
	fs.Usage = func() { usage(stderr) }

	if len(args) == 0 {
		fmt.Fprintln(stderr, "error: missing required scenario argument")
		usage(stderr)
		return 2
	}
	name := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	var rateOverride *float64
	if *failRate >= 0 {
		rateOverride = failRate
	}
	var seedOverride *int64
	if seeded(args) {
		seedOverride = seed
	}

	cfg, err := scenario.Load(name, rateOverride, seedOverride)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		usage(stderr)
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	injectOpts := []inject.Option{}
	if cfg.Seeded {
		injectOpts = append(injectOpts, inject.WithSeed(cfg.Seed))
	}
	injector, err := inject.New(cfg.FailureRate, injectOpts...)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	charger := step.NewFakeCardCharger(injector)

	orch, err := orchestrator.New(
		orchestrator.WithPaymentStep(step.NewPaymentCapture(charger,
			step.WithPaymentLogger(logger))),
		orchestrator.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	fmt.Fprintf(stdout, "scenario: %s (failure rate %.0f%%", cfg.Name, cfg.FailureRate*100)
	if cfg.Seeded {
		fmt.Fprintf(stdout, ", seed %d", cfg.Seed)
	}
	fmt.Fprintln(stdout, ")")

	out, err := orch.Process(context.Background(), cfg.Order)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	printOutcome(stdout, out, charger.Attempts())
	return 0
}

func printOutcome(w *os.File, out order.Outcome, paymentAttempts int64) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "order:  ", out.OrderID)
	fmt.Fprintln(w, "status: ", out.Status.String())

	if out.Risk != nil {
		fmt.Fprintf(w, "risk:    score %.2f (%s) - %s\n",
			out.Risk.RiskScore, out.Risk.RiskLevel.String(), out.Risk.Reason)
	}
	if out.Payment != nil {
		if out.Payment.Success {
			fmt.Fprintf(w, "payment: charged %.2f (%s) after %d attempt(s)\n",
				out.Payment.AmountCharged, out.Payment.ChargeReference, paymentAttempts)
		} else {
			fmt.Fprintf(w, "payment: failed after %d attempt(s) - %s\n",
				paymentAttempts, out.Payment.Message)
		}
	}
	if out.Confirmation != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "subject:", out.Confirmation.Subject)
		fmt.Fprintf(w, "tone:    %s\n", out.Confirmation.Tone.String())
		fmt.Fprintln(w, out.Confirmation.Body)
	}
}

// seeded reports whether -seed was passed explicitly, so an explicit seed of
// zero still counts.
func seeded(args []string) bool {
	for _, a := range args {
		if a == "-seed" || a == "--seed" ||
			strings.HasPrefix(a, "-seed=") || strings.HasPrefix(a, "--seed=") {
			return true
		}
	}
	return false
}

func usage(w *os.File) {
	fmt.Fprintln(w, "Usage: orderflow <scenario> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Scenarios:")
	fmt.Fprintln(w, "  low-risk        normal order with low fraud risk")
	fmt.Fprintln(w, "  high-risk       large quantity order that gets flagged")
	fmt.Fprintln(w, "  fraud-test      order with intentional fraud indicators")
	fmt.Fprintln(w, "  payment-flaky   normal order with flaky payment (70% failure rate)")
	fmt.Fprintln(w, "  payment-broken  normal order with broken payment (100% failure rate)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -fail-rate f  payment failure rate override (0.0-1.0)")
	fmt.Fprintln(w, "  -seed n       random seed for deterministic replays")
	fmt.Fprintln(w, "  -v            enable debug logging")
}
