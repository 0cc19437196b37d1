package aggregate

import (
	"math/big"
	"sort"
	"time"
)

// DateLayout is the label format of a day bucket (yyyy/MM/dd).
const DateLayout = "2006/01/02"

// Point is one timestamped amount.
type Point struct {
	// Timestamp in Unix seconds.
	Timestamp int64
	// Amount as a decimal string in the smallest unit.
	Amount string
}

// DayBucket is the total of all points falling on one calendar day.
type DayBucket struct {
	Index  int
	Day    time.Time
	Amount *big.Int
}

// Date returns the bucket label.
func (b DayBucket) Date() string {
	return b.Day.Format(DateLayout)
}

// BucketByDay groups points by UTC calendar day and sums their amounts.
// Every day between the earliest and latest observed day is present in the
// output, days without points carrying a zero total. Buckets are ordered by
// day and indexed from 1.
func BucketByDay(points []Point) ([]DayBucket, error) {
	if len(points) == 0 {
		return []DayBucket{}, nil
	}

	totals := make(map[time.Time]*big.Int)
	var first, last time.Time
	for i, p := range points {
		amount, err := ParseAmount(p.Amount)
		if err != nil {
			return nil, &NumberFormatError{Value: p.Amount, Position: i}
		}

		day := startOfDay(p.Timestamp)
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}

		if total, ok := totals[day]; ok {
			total.Add(total, amount)
		} else {
			totals[day] = amount
		}
	}

	// Fill in days without any points
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if _, ok := totals[day]; !ok {
			totals[day] = new(big.Int)
		}
	}

	buckets := make([]DayBucket, 0, len(totals))
	for day, total := range totals {
		buckets = append(buckets, DayBucket{Day: day, Amount: total})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	for i := range buckets {
		buckets[i].Index = i + 1
	}

	return buckets, nil
}

func startOfDay(unix int64) time.Time {
	t := time.Unix(unix, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
