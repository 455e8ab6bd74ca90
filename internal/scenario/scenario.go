// Package scenario provides the canned demo orders and failure
// configurations selectable from the command line.
package scenario

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jzx17/orderflow/pkg/order"
)

// Config is a fully resolved scenario: the order to process and the payment
// failure injection to run it against.
type Config struct {
	Name        string
	Order       order.Order
	FailureRate float64
	Seed        int64
	Seeded      bool
}

type definition struct {
	failureRate float64
	build       func(id string) order.Order
}

var definitions = map[string]definition{
	"low-risk": {
		failureRate: 0.0,
		build: func(id string) order.Order {
			return order.MustNew("ORDER-"+id,
				mustItem("SKU-123", 2),
				mustItem("SKU-789", 1))
		},
	},
	"high-risk": {
		failureRate: 0.0,
		build: func(id string) order.Order {
			return order.MustNew("ORDER-"+id,
				mustItem("SKU-123", 50),
				mustItem("SKU-456", 75))
		},
	},
	"fraud-test": {
		failureRate: 0.0,
		build: func(id string) order.Order {
			return order.MustNew("FRAUD-TEST-"+id,
				mustItem("SKU-999", 1))
		},
	},
	"payment-flaky": {
		failureRate: 0.7,
		build: func(id string) order.Order {
			return order.MustNew("ORDER-"+id,
				mustItem("SKU-123", 2),
				mustItem("SKU-789", 1))
		},
	},
	"payment-broken": {
		failureRate: 1.0,
		build: func(id string) order.Order {
			return order.MustNew("ORDER-"+id,
				mustItem("SKU-123", 2),
				mustItem("SKU-789", 1))
		},
	},
}

// Names lists the valid scenario names, sorted
func Names() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves a scenario by name. failureRate overrides the scenario's
// default when non-nil; seed pins the injector's random source for
// deterministic replays.
func Load(name string, failureRate *float64, seed *int64) (Config, error) {
	def, ok := definitions[strings.ToLower(name)]
	if !ok {
		return Config{}, fmt.Errorf("unknown scenario %q, must be one of: %s",
			name, strings.Join(Names(), ", "))
	}

	cfg := Config{
		Name:        strings.ToLower(name),
		Order:       def.build(fmt.Sprintf("%d", time.Now().UnixMilli())),
		FailureRate: def.failureRate,
	}

	if failureRate != nil {
		if *failureRate < 0.0 || *failureRate > 1.0 {
			return Config{}, fmt.Errorf("failure rate must be between 0.0 and 1.0, got %v", *failureRate)
		}
		cfg.FailureRate = *failureRate
	}
	if seed != nil {
		cfg.Seed = *seed
		cfg.Seeded = true
	}

	return cfg, nil
}

func mustItem(code string, quantity int) order.LineItem {
	item, err := order.NewLineItem(code, quantity)
	if err != nil {
		panic(err)
	}
	return item
}
