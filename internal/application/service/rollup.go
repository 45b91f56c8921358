package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
)

// The rollup functions are pure: they fold a slice of committed sales (plus a
// product cost basis map) into report rows, with no storage access. Amounts
// stay in cents until the report structs convert them for JSON.

// Granularity selects the bucket width of a revenue series.
type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityWeekly Granularity = "weekly"
	GranularityYearly Granularity = "yearly"
)

// ParseGranularity maps a query-string value to a Granularity, defaulting to daily.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", string(GranularityDaily):
		return GranularityDaily, nil
	case string(GranularityWeekly):
		return GranularityWeekly, nil
	case string(GranularityYearly):
		return GranularityYearly, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// RollupBucket is one period in a revenue/profit series
type RollupBucket struct {
	Period string  `json:"period"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`

	salesCents  int64
	profitCents int64
}

// TopProduct is one row in a top-sellers report
type TopProduct struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`

	revenueCents int64
}

// CategoryStat is one row in a category performance report
type CategoryStat struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Profit   float64 `json:"profit"`

	revenueCents int64
	profitCents  int64
}

// lineProfitCents computes the profit of one sale line in cents against the
// product's purchase price. A missing cost basis counts as zero cost.
func lineProfitCents(line *entity.SaleLine, costs map[uuid.UUID]int64) int64 {
	return (line.UnitPrice - costs[line.ProductID]) * int64(line.Quantity)
}

// bucketKey formats a sale date into its series bucket label. Weekly buckets
// use the ISO year and week so the last days of December and the first days
// of January share a label when they share an ISO week.
func bucketKey(date time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityWeekly:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityYearly:
		return fmt.Sprintf("%04d", date.Year())
	default:
		return date.Format("2006-01-02")
	}
}

// Rollup groups sales into period buckets by calendar sale date, summing
// revenue and per-line profit. Buckets are returned in ascending period
// order. Periods without sales are omitted; use zeroFillDaily for charting.
func Rollup(sales []entity.Sale, costs map[uuid.UUID]int64, granularity Granularity) []RollupBucket {
	byPeriod := make(map[string]*RollupBucket)
	for i := range sales {
		sale := &sales[i]
		key := bucketKey(sale.SaleDate, granularity)
		bucket, ok := byPeriod[key]
		if !ok {
			bucket = &RollupBucket{Period: key}
			byPeriod[key] = bucket
		}
		bucket.salesCents += sale.TotalAmount
		for j := range sale.Lines {
			bucket.profitCents += lineProfitCents(&sale.Lines[j], costs)
		}
	}

	buckets := make([]RollupBucket, 0, len(byPeriod))
	for _, bucket := range byPeriod {
		bucket.Sales = float64(bucket.salesCents) / 100
		bucket.Profit = float64(bucket.profitCents) / 100
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Period < buckets[j].Period })
	return buckets
}

// zeroFillDaily inserts empty buckets for each calendar day in [start, end]
// that has no sales. Only meaningful for the daily granularity.
func zeroFillDaily(buckets []RollupBucket, start, end time.Time) []RollupBucket {
	byPeriod := make(map[string]RollupBucket, len(buckets))
	for _, b := range buckets {
		byPeriod[b.Period] = b
	}

	var filled []RollupBucket
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if b, ok := byPeriod[key]; ok {
			filled = append(filled, b)
		} else {
			filled = append(filled, RollupBucket{Period: key})
		}
	}
	return filled
}

// TopProducts ranks products by revenue within the window, summing quantity
// and revenue per product name (the snapshot name, so renames after the sale
// do not rewrite history). Ties in revenue break by name ascending, which
// keeps the ranking deterministic. The result is truncated to limit.
func TopProducts(sales []entity.Sale, limit int) []TopProduct {
	byName := make(map[string]*TopProduct)
	for i := range sales {
		for j := range sales[i].Lines {
			line := &sales[i].Lines[j]
			row, ok := byName[line.ProductName]
			if !ok {
				row = &TopProduct{ProductName: line.ProductName}
				byName[line.ProductName] = row
			}
			row.Quantity += line.Quantity
			row.revenueCents += line.TotalPrice
		}
	}

	rows := make([]TopProduct, 0, len(byName))
	for _, row := range byName {
		row.Revenue = float64(row.revenueCents) / 100
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].revenueCents != rows[j].revenueCents {
			return rows[i].revenueCents > rows[j].revenueCents
		}
		return rows[i].ProductName < rows[j].ProductName
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// CategoryPerformance groups sale lines by the snapshotted product category,
// summing revenue and profit, sorted by revenue descending.
func CategoryPerformance(sales []entity.Sale, costs map[uuid.UUID]int64) []CategoryStat {
	byCategory := make(map[string]*CategoryStat)
	for i := range sales {
		for j := range sales[i].Lines {
			line := &sales[i].Lines[j]
			row, ok := byCategory[line.ProductCategory]
			if !ok {
				row = &CategoryStat{Category: line.ProductCategory}
				byCategory[line.ProductCategory] = row
			}
			row.revenueCents += line.TotalPrice
			row.profitCents += lineProfitCents(line, costs)
		}
	}

	rows := make([]CategoryStat, 0, len(byCategory))
	for _, row := range byCategory {
		row.Revenue = float64(row.revenueCents) / 100
		row.Profit = float64(row.profitCents) / 100
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].revenueCents != rows[j].revenueCents {
			return rows[i].revenueCents > rows[j].revenueCents
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// totalsCents sums revenue, profit and transaction count across the window.
func totalsCents(sales []entity.Sale, costs map[uuid.UUID]int64) (revenue, profit int64, count int) {
	for i := range sales {
		revenue += sales[i].TotalAmount
		for j := range sales[i].Lines {
			profit += lineProfitCents(&sales[i].Lines[j], costs)
		}
	}
	return revenue, profit, len(sales)
}

// averageOrderValue returns revenue / count as a decimal amount, 0 for an
// empty window. The division happens in floating point so sub-cent
// remainders survive into the displayed value.
func averageOrderValue(revenueCents int64, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(revenueCents) / float64(count) / 100
}
