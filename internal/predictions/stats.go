package predictions

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/youscore/youscore-backend/internal/week"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
)

// WeeklyStat is the derived per-week P/L summary. Never persisted;
// recomputed from graded predictions on every request.
type WeeklyStat struct {
	WeekID        string          `json:"week_id"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	TotalStaked   decimal.Decimal `json:"total_staked"`
	TotalReturned decimal.Decimal `json:"total_returned"`
	ProfitOrLoss  decimal.Decimal `json:"profit_or_loss"`
	ROI           decimal.Decimal `json:"roi"`
	WinCount      int             `json:"win_count"`
	LossCount     int             `json:"loss_count"`
	ReturnCount   int             `json:"return_count"`
}

var hundred = decimal.NewFromInt(100)

// WeeklyStats groups graded predictions by ISO week. Grouping follows the
// week identifier, not the calendar year, so late-December dates may land
// in the following week-year and vice versa.
func (s *service) WeeklyStats(ctx context.Context) ([]WeeklyStat, error) {
	rows, err := s.repo.ListGraded(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list graded predictions")
	}

	groups := make(map[string]*WeeklyStat)
	for _, row := range rows {
		id := week.ID(row.MatchDate)
		stat, ok := groups[id]
		if !ok {
			year, wk := row.MatchDate.UTC().ISOWeek()
			start := week.DateOfISOWeek(wk, year)
			stat = &WeeklyStat{
				WeekID:        id,
				StartDate:     start,
				EndDate:       start.AddDate(0, 0, 6),
				TotalStaked:   decimal.Zero,
				TotalReturned: decimal.Zero,
			}
			groups[id] = stat
		}

		stake := decimal.NewFromInt(1)
		if row.RecommendedStake != nil {
			stake = decimal.NewFromInt(int64(*row.RecommendedStake))
		}
		stat.TotalStaked = stat.TotalStaked.Add(stake)

		switch row.Result {
		case enums.PredictionResultWon:
			stat.WinCount++
			stat.TotalReturned = stat.TotalReturned.Add(stake.Mul(row.Odds))
		case enums.PredictionResultReturn:
			stat.ReturnCount++
			stat.TotalReturned = stat.TotalReturned.Add(stake)
		case enums.PredictionResultLoss:
			stat.LossCount++
		}
	}

	stats := make([]WeeklyStat, 0, len(groups))
	for _, stat := range groups {
		stat.ProfitOrLoss = stat.TotalReturned.Sub(stat.TotalStaked)
		if stat.TotalStaked.IsPositive() {
			stat.ROI = stat.ProfitOrLoss.Div(stat.TotalStaked).Mul(hundred)
		} else {
			stat.ROI = decimal.Zero
		}
		stats = append(stats, *stat)
	}

	// zero-padded year-first identifiers sort correctly as strings
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].WeekID > stats[j].WeekID
	})
	return stats, nil
}
