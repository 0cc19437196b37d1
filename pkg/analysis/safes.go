package analysis

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/CirclesUBI/circles-analysis/pkg/aggregate"
	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
	"github.com/CirclesUBI/circles-analysis/pkg/subgraph"
)

func runOwnerships(ctx context.Context, env *Env) (*Result, error) {
	changes, err := pagination.FetchAll[subgraph.OwnershipChange](ctx, env.Fetcher, subgraph.OwnershipChanges())
	if err != nil {
		return nil, err
	}
	safes, err := pagination.FetchAll[subgraph.Safe](ctx, env.Fetcher, subgraph.Safes())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: []string{"index", "id", "adds", "removes"},
		Rows:    make([]Row, 0, len(changes)),
	}

	adds, removes := 0, 0
	for _, c := range changes {
		if c.Adds != "" {
			adds++
		}
		if c.Removes != "" {
			removes++
		}
		res.Rows = append(res.Rows, Row{
			"index":   strconv.Itoa(c.Index),
			"id":      c.ID,
			"adds":    c.Adds,
			"removes": c.Removes,
		})
	}

	s := env.summarize(res)
	s.count("Added devices total", adds)
	s.count("Manually removed devices", removes)
	// every deployed safe starts with one owner added by the deployment itself
	s.count("Manually added devices", adds-len(safes))
	s.count("Deployed Safes total", len(safes))

	return res, nil
}

func runSafes(ctx context.Context, env *Env) (*Result, error) {
	safes, err := pagination.FetchAll[subgraph.Safe](ctx, env.Fetcher, subgraph.SafeBalances())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: []string{"index", "id", "balance"},
		Rows:    make([]Row, 0, len(safes)),
	}
	totals := make([]*big.Int, 0, len(safes))

	for _, safe := range safes {
		balances := make([]*big.Int, 0, len(safe.Balances))
		for _, b := range safe.Balances {
			amount, err := aggregate.ParseAmount(b.Amount)
			if err != nil {
				return nil, fmt.Errorf("safe %s: %w", safe.ID, err)
			}
			balances = append(balances, amount)
		}
		total := aggregate.Sum(balances)
		totals = append(totals, total)

		res.Rows = append(res.Rows, Row{
			"index":   strconv.Itoa(safe.Index),
			"id":      safe.ID,
			"balance": total.String(),
		})
	}

	s := env.summarize(res)
	s.count("Deployed Safes total", len(safes))
	s.averageCircles("Average total balance per Safe", totals)
	s.maxCircles("Max total balance per Safe", totals)

	return res, nil
}

func deployedSafes(organization bool, title string) RunFunc {
	return func(ctx context.Context, env *Env) (*Result, error) {
		safes, err := pagination.FetchAll[subgraph.Safe](ctx, env.Fetcher, subgraph.DeployedSafes(organization))
		if err != nil {
			return nil, err
		}

		res := &Result{
			Columns: []string{"index"},
			Rows:    make([]Row, 0, len(safes)),
		}
		for _, safe := range safes {
			res.Rows = append(res.Rows, Row{"index": strconv.Itoa(safe.Index)})
		}

		env.summarize(res).count(title, len(safes))
		return res, nil
	}
}
