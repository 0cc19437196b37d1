package analysis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/CirclesUBI/circles-analysis/pkg/aggregate"
	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
	"github.com/CirclesUBI/circles-analysis/pkg/subgraph"
)

var trustColumns = []string{"index", "id", "canSendToAddress", "userAddress", "limitPercentage", "time"}

func runTrusts(ctx context.Context, env *Env) (*Result, error) {
	notifications, err := pagination.FetchAll[subgraph.Notification](ctx, env.Fetcher, subgraph.TrustNotifications())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: trustColumns,
		Rows:    make([]Row, 0, len(notifications)),
	}

	var created []Row
	revoked := 0

	for _, n := range notifications {
		t := n.Trust
		if t == nil {
			return nil, fmt.Errorf("notification %s: missing trust", n.ID)
		}
		row := Row{
			"index":            strconv.Itoa(n.Index),
			"id":               t.ID,
			"canSendToAddress": t.CanSendTo,
			"userAddress":      t.User,
			"limitPercentage":  t.LimitPercentage,
			"time":             n.Time,
		}
		res.Rows = append(res.Rows, row)

		if t.Revoked() {
			revoked++
		} else {
			created = append(created, row)
		}
	}

	counts := aggregate.CountBy(project(created, "canSendToAddress", "userAddress"))
	outgoing := counts["canSendToAddress"]
	incoming := counts["userAddress"]

	s := env.summarize(res)
	s.count("Created trust connections", len(created))
	s.count("Revoked trust connections", revoked)
	s.meanCount("Average outgoing trust connections", outgoing)
	s.meanCount("Average incoming trust connections", incoming)
	s.maxCount("Max outgoing trust connections", outgoing)
	s.maxCount("Max incoming trust connections", incoming)

	return res, nil
}
