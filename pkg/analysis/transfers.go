package analysis

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/CirclesUBI/circles-analysis/pkg/aggregate"
	"github.com/CirclesUBI/circles-analysis/pkg/pagination"
	"github.com/CirclesUBI/circles-analysis/pkg/subgraph"
)

var (
	transferColumns             = []string{"index", "id", "from", "to", "amount"}
	transferNotificationColumns = []string{"index", "id", "from", "to", "amount", "time"}
)

func runTransitive(ctx context.Context, env *Env) (*Result, error) {
	return transferNotifications(ctx, env, subgraph.HubTransferNotifications(),
		func(n subgraph.Notification) *subgraph.TransferRef { return n.HubTransfer })
}

func runTimeTransfers(ctx context.Context, env *Env) (*Result, error) {
	return transferNotifications(ctx, env, subgraph.TransferNotifications(),
		func(n subgraph.Notification) *subgraph.TransferRef { return n.Transfer })
}

func transferNotifications(ctx context.Context, env *Env, req pagination.Request, part func(subgraph.Notification) *subgraph.TransferRef) (*Result, error) {
	notifications, err := pagination.FetchAll[subgraph.Notification](ctx, env.Fetcher, req)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: transferNotificationColumns,
		Rows:    make([]Row, 0, len(notifications)),
	}
	amounts := make([]*big.Int, 0, len(notifications))

	for _, n := range notifications {
		t := part(n)
		if t == nil {
			return nil, fmt.Errorf("notification %s: missing transfer", n.ID)
		}
		amount, err := aggregate.ParseAmount(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("notification %s: %w", n.ID, err)
		}
		amounts = append(amounts, amount)
		res.Rows = append(res.Rows, Row{
			"index":  strconv.Itoa(n.Index),
			"id":     t.ID,
			"from":   t.From,
			"to":     t.To,
			"amount": t.Amount,
			"time":   n.Time,
		})
	}

	counts := aggregate.CountBy(project(res.Rows, "from", "to"))

	s := env.summarize(res)
	s.averageCircles("Average amount", amounts)
	s.meanCount("Average sent transfers per user", counts["from"])
	s.maxCount("Max received transfers per user", counts["to"])

	return res, nil
}

func runTransfers(ctx context.Context, env *Env) (*Result, error) {
	transfers, err := pagination.FetchAll[subgraph.Transfer](ctx, env.Fetcher, subgraph.Transfers())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Columns: transferColumns,
		Rows:    make([]Row, 0, len(transfers)),
	}

	amounts := make([]*big.Int, 0, len(transfers))
	var payouts, fees []*big.Int

	for _, t := range transfers {
		amount, err := aggregate.ParseAmount(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: %w", t.ID, err)
		}
		amounts = append(amounts, amount)

		// subgraph addresses are lowercase, configured ones may be checksummed
		if strings.EqualFold(t.From, subgraph.ZeroAddress) {
			payouts = append(payouts, amount)
		}
		if strings.EqualFold(t.To, env.Config.RelayerAddress) {
			fees = append(fees, amount)
		}

		res.Rows = append(res.Rows, Row{
			"index":  strconv.Itoa(t.Index),
			"id":     t.ID,
			"from":   t.From,
			"to":     t.To,
			"amount": t.Amount,
		})
	}

	s := env.summarize(res)
	s.averageCircles("Average amount", amounts)
	s.averageCircles("Average UBI payout amount", payouts)
	s.count("UBI payouts count", len(payouts))
	s.wei("Total gas fees amount (in wei)", aggregate.Sum(fees))
	s.averageWei("Average gas fees amount (in wei)", fees)

	return res, nil
}
