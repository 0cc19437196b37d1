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

func runVelocity(ctx context.Context, env *Env) (*Result, error) {
	notifications, err := pagination.FetchAll[subgraph.Notification](ctx, env.Fetcher, subgraph.HubTransferNotifications())
	if err != nil {
		return nil, err
	}

	points := make([]aggregate.Point, 0, len(notifications))
	for _, n := range notifications {
		if n.HubTransfer == nil {
			return nil, fmt.Errorf("notification %s: missing transfer", n.ID)
		}
		ts, err := n.Timestamp()
		if err != nil {
			return nil, err
		}
		points = append(points, aggregate.Point{Timestamp: ts, Amount: n.HubTransfer.Amount})
	}

	days, err := aggregate.BucketByDay(points)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: []string{"index", "date", "amount"},
		Rows:    make([]Row, 0, len(days)),
	}
	amounts := make([]*big.Int, 0, len(days))
	for _, d := range days {
		amounts = append(amounts, d.Amount)
		res.Rows = append(res.Rows, Row{
			"index":  strconv.Itoa(d.Index),
			"date":   d.Date(),
			"amount": d.Amount.String(),
		})
	}

	s := env.summarize(res)
	s.count("Total days recorded", len(days))
	s.averageCircles("Velocity (Circles / Day)", amounts)
	s.maxCircles("Max velocity (one day)", amounts)

	return res, nil
}
