package predictions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/internal/week"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
)

type fakeRepo struct {
	createBatchFn  func(ctx context.Context, rows []*models.Prediction) error
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	updateResultFn func(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (bool, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) (bool, error)
	listInRangeFn  func(ctx context.Context, start, end time.Time) ([]models.Prediction, error)
	listGradedFn   func(ctx context.Context) ([]models.Prediction, error)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateBatch(ctx context.Context, rows []*models.Prediction) error {
	if f.createBatchFn != nil {
		return f.createBatchFn(ctx, rows)
	}
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateResult(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (bool, error) {
	if f.updateResultFn != nil {
		return f.updateResultFn(ctx, id, result, finalScore)
	}
	return true, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return false, nil
}

func (f *fakeRepo) ListPending(ctx context.Context) ([]models.Prediction, error) { return nil, nil }

func (f *fakeRepo) ListHistory(ctx context.Context) ([]models.Prediction, error) { return nil, nil }

func (f *fakeRepo) ListGraded(ctx context.Context) ([]models.Prediction, error) {
	if f.listGradedFn != nil {
		return f.listGradedFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) ListInRange(ctx context.Context, start, end time.Time) ([]models.Prediction, error) {
	if f.listInRangeFn != nil {
		return f.listInRangeFn(ctx, start, end)
	}
	return nil, nil
}

type fakeSubscribers struct {
	ids []uuid.UUID
}

func (f *fakeSubscribers) ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f.ids, nil
}

type fakeNotifier struct {
	notified []uuid.UUID
	kinds    []enums.NotificationType
}

func (f *fakeNotifier) Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, message string) error {
	f.notified = append(f.notified, userID)
	f.kinds = append(f.kinds, kind)
	return nil
}

type fakeGranter struct {
	segment week.Segment
	expiry  time.Time
	calls   int
}

func (f *fakeGranter) GrantFreeAccess(ctx context.Context, segment week.Segment, expiry time.Time) (int64, error) {
	f.calls++
	f.segment = segment
	f.expiry = expiry
	return 1, nil
}

func newTestService(t *testing.T, repo Repository, subscribers Subscribers, notifier Notifier, granter AccessGranter) *service {
	t.Helper()
	if granter == nil {
		granter = &fakeGranter{}
	}
	logg := logger.New(logger.Options{ServiceName: "test"})
	access := config.AccessConfig{DeviceLimit: 2, FreeAccessAnchor: 7 * 24 * time.Hour}
	svc, err := NewService(repo, subscribers, notifier, granter, access, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func intPtr(v int) *int { return &v }

func decPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestAddDerivesOddsAndStake(t *testing.T) {
	var inserted []*models.Prediction
	repo := &fakeRepo{
		createBatchFn: func(ctx context.Context, rows []*models.Prediction) error {
			inserted = rows
			return nil
		},
	}
	svc := newTestService(t, repo, nil, nil, nil)

	out, err := svc.Add(context.Background(), []CreateParams{
		{
			MatchDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			League:    "Eng Premier League",
			Match:     "A vs B",
			Tip:       "A Win",
			ProbMax:   decPtr("0.65"),
		},
		{
			MatchDate:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			League:     "Serie A",
			Match:      "C vs D",
			Tip:        "Over 2.5",
			Odds:       decPtr("2.5"),
			Type:       enums.PredictionTypeBig,
			Confidence: intPtr(85),
		},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(inserted) != 2 || len(out) != 2 {
		t.Fatalf("expected 2 rows inserted, got %d/%d", len(inserted), len(out))
	}

	derived := decimal.NewFromInt(1).Div(decimal.RequireFromString("0.65"))
	if !out[0].Odds.Equal(derived) {
		t.Fatalf("odds = %s, want %s", out[0].Odds, derived)
	}
	if out[0].RecommendedStake == nil || *out[0].RecommendedStake != 1 {
		t.Fatalf("absent confidence should stake 1, got %v", out[0].RecommendedStake)
	}
	if out[0].Result != enums.PredictionResultPending {
		t.Fatalf("new predictions start Pending, got %s", out[0].Result)
	}

	if !out[1].Odds.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("explicit odds must win, got %s", out[1].Odds)
	}
	if out[1].RecommendedStake == nil || *out[1].RecommendedStake != 3 {
		t.Fatalf("confidence 85 should stake 3, got %v", out[1].RecommendedStake)
	}
}

func TestAddRejectsMissingOddsAndProbMax(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, nil, nil, nil)
	_, err := svc.Add(context.Background(), []CreateParams{{
		MatchDate: time.Now(),
		League:    "L",
		Match:     "A vs B",
		Tip:       "T",
	}})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeriveStakeBands(t *testing.T) {
	cases := []struct {
		confidence *int
		want       int
	}{
		{nil, 1},
		{intPtr(59), 1},
		{intPtr(60), 2},
		{intPtr(79), 2},
		{intPtr(80), 3},
		{intPtr(100), 3},
		{intPtr(0), 1},
	}
	for _, tc := range cases {
		if got := DeriveStake(tc.confidence); got != tc.want {
			t.Errorf("DeriveStake(%v) = %d, want %d", tc.confidence, got, tc.want)
		}
	}
}

func TestAddNotifiesActiveSubscribers(t *testing.T) {
	audience := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	notifier := &fakeNotifier{}
	svc := newTestService(t, &fakeRepo{}, &fakeSubscribers{ids: audience}, notifier, nil)

	_, err := svc.Add(context.Background(), []CreateParams{{
		MatchDate: time.Now(),
		League:    "L",
		Match:     "A vs B",
		Tip:       "T",
		Odds:      decPtr("1.8"),
	}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(notifier.notified) != len(audience) {
		t.Fatalf("expected %d notifications, got %d", len(audience), len(notifier.notified))
	}
	for _, kind := range notifier.kinds {
		if kind != enums.NotificationTypeNewPredictions {
			t.Fatalf("unexpected notification type %s", kind)
		}
	}
}

func TestUpdateResultNotFound(t *testing.T) {
	repo := &fakeRepo{
		updateResultFn: func(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo, nil, nil, nil)
	_, err := svc.UpdateResult(context.Background(), uuid.New(), enums.PredictionResultWon, nil)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func segmentRows(matchDate time.Time, results ...enums.PredictionResult) []models.Prediction {
	rows := make([]models.Prediction, len(results))
	for i, result := range results {
		rows[i] = models.Prediction{
			ID:        uuid.New(),
			MatchDate: matchDate,
			Result:    result,
			Odds:      decimal.NewFromInt(2),
		}
	}
	return rows
}

func gradedService(t *testing.T, rows []models.Prediction, granter *fakeGranter) (*service, *models.Prediction) {
	t.Helper()
	target := &rows[len(rows)-1]
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
			return target, nil
		},
		listInRangeFn: func(ctx context.Context, start, end time.Time) ([]models.Prediction, error) {
			var out []models.Prediction
			for _, row := range rows {
				if !row.MatchDate.Before(start) && row.MatchDate.Before(end) {
					out = append(out, row)
				}
			}
			return out, nil
		},
	}
	return newTestService(t, repo, nil, nil, granter), target
}

func TestGuaranteeGrantsOnAllReturnSegment(t *testing.T) {
	// Tuesday, mid-week segment
	matchDate := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	rows := segmentRows(matchDate, enums.PredictionResultReturn, enums.PredictionResultReturn)
	granter := &fakeGranter{}
	svc, target := gradedService(t, rows, granter)

	now := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.UpdateResult(context.Background(), target.ID, enums.PredictionResultReturn, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if granter.calls != 1 {
		t.Fatalf("expected one grant, got %d", granter.calls)
	}
	if granter.segment != week.SegmentMidWeek {
		t.Fatalf("expected mid-week grant, got %s", granter.segment)
	}
	want := week.SegmentExpiry(now, 7*24*time.Hour, week.SegmentMidWeek)
	if !granter.expiry.Equal(want) {
		t.Fatalf("expiry = %s, want %s", granter.expiry, want)
	}
}

func TestGuaranteeBlockedByWin(t *testing.T) {
	matchDate := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	rows := segmentRows(matchDate, enums.PredictionResultWon, enums.PredictionResultReturn)
	granter := &fakeGranter{}
	svc, target := gradedService(t, rows, granter)

	if _, err := svc.UpdateResult(context.Background(), target.ID, enums.PredictionResultReturn, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if granter.calls != 0 {
		t.Fatal("a Won result must block the grant")
	}
}

func TestGuaranteeWaitsForPending(t *testing.T) {
	matchDate := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	rows := segmentRows(matchDate, enums.PredictionResultPending, enums.PredictionResultReturn)
	granter := &fakeGranter{}
	svc, target := gradedService(t, rows, granter)

	if _, err := svc.UpdateResult(context.Background(), target.ID, enums.PredictionResultReturn, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if granter.calls != 0 {
		t.Fatal("an unsettled segment must not grant")
	}
}

func TestGuaranteeIgnoresOtherSegmentRows(t *testing.T) {
	// Tuesday mid-week target; a same-week Saturday loss must not block it.
	tuesday := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	rows := segmentRows(saturday, enums.PredictionResultLoss)
	rows = append(rows, segmentRows(tuesday, enums.PredictionResultReturn)...)
	granter := &fakeGranter{}
	svc, target := gradedService(t, rows, granter)

	if _, err := svc.UpdateResult(context.Background(), target.ID, enums.PredictionResultReturn, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if granter.calls != 1 {
		t.Fatalf("weekend loss must not block the mid-week grant (calls=%d)", granter.calls)
	}
	if granter.segment != week.SegmentMidWeek {
		t.Fatalf("expected mid-week grant, got %s", granter.segment)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, nil, nil, nil)
	err := svc.Delete(context.Background(), uuid.New())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFetchRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, nil, nil, nil)
	_, err := svc.Fetch(context.Background(), "everything")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
