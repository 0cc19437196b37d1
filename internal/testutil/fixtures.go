package testutil

import (
	"fmt"
	"strconv"
)

// TransferFixture describes a generated transfers collection.
type TransferFixture struct {
	Records []Record
	// Payouts is the number of transfers sent from the zero address
	Payouts int
	// FeeTotal is the sum of amounts sent to the relayer, as a decimal string
	FeeTotal string
}

// Transfers generates n transfers. Every payoutEvery-th transfer is a UBI
// payout from the zero address, every feeEvery-th (that is not a payout) goes
// to relayer. Amounts exceed float64 precision on purpose.
func Transfers(n, payoutEvery, feeEvery int, relayer string) TransferFixture {
	fx := TransferFixture{Records: make([]Record, 0, n)}
	var feeTotal uint64

	for i := 1; i <= n; i++ {
		from := Address(i%17 + 1)
		to := Address(i%23 + 100)
		fee := uint64(i % 1000)
		amount := fmt.Sprintf("%d000000000000000001", i)

		switch {
		case payoutEvery > 0 && i%payoutEvery == 0:
			from = ZeroAddress
			fx.Payouts++
		case feeEvery > 0 && i%feeEvery == 0:
			to = relayer
			amount = strconv.FormatUint(fee, 10)
			feeTotal += fee
		}

		fx.Records = append(fx.Records, Record{
			"id":     ID(i),
			"from":   from,
			"to":     to,
			"amount": amount,
		})
	}

	fx.FeeTotal = strconv.FormatUint(feeTotal, 10)
	return fx
}

// HubTransferNotifications generates notifications of type HUB_TRANSFER, one
// per entry of times (Unix seconds), each moving amount.
func HubTransferNotifications(times []int64, amount string) []Record {
	out := make([]Record, len(times))
	for i, ts := range times {
		out[i] = Record{
			"id":   ID(i + 1),
			"type": "HUB_TRANSFER",
			"time": strconv.FormatInt(ts, 10),
			"hubTransfer": map[string]any{
				"id":     fmt.Sprintf("hub-%d", i+1),
				"from":   Address(i%3 + 1),
				"to":     Address(i%2 + 10),
				"amount": amount,
			},
		}
	}
	return out
}
