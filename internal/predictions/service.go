package predictions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/internal/week"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db/models"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
)

// Subscribers supplies the fan-out audience for ingestion notifications.
type Subscribers interface {
	ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Notifier appends an entry to a user's notification feed.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, message string) error
}

// AccessGranter writes a segment-wide free-access grant.
type AccessGranter interface {
	GrantFreeAccess(ctx context.Context, segment week.Segment, expiry time.Time) (int64, error)
}

// Service covers prediction ingestion, grading, and read paths.
type Service interface {
	Add(ctx context.Context, batch []CreateParams) ([]models.Prediction, error)
	UpdateResult(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (*models.Prediction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Fetch(ctx context.Context, status string) ([]models.Prediction, error)
	WeeklyStats(ctx context.Context) ([]WeeklyStat, error)
}

// CreateParams is one prediction to ingest. Odds may be omitted when
// ProbMax is present; the stake defaults from the confidence bands.
type CreateParams struct {
	MatchDate        time.Time
	League           string
	Match            string
	Tip              string
	Odds             *decimal.Decimal
	ProbMax          *decimal.Decimal
	Type             enums.PredictionType
	Confidence       *int
	RecommendedStake *int
}

type service struct {
	repo        Repository
	subscribers Subscribers
	notifier    Notifier
	granter     AccessGranter
	access      config.AccessConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the predictions service dependencies. Subscribers and
// notifier may be nil together to disable the ingestion fan-out.
func NewService(repo Repository, subscribers Subscribers, notifier Notifier, granter AccessGranter, access config.AccessConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "predictions repository required")
	}
	if granter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "access granter required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:        repo,
		subscribers: subscribers,
		notifier:    notifier,
		granter:     granter,
		access:      access,
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Add(ctx context.Context, batch []CreateParams) ([]models.Prediction, error) {
	if len(batch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty prediction batch")
	}

	rows := make([]*models.Prediction, 0, len(batch))
	for i, params := range batch {
		row, err := buildPrediction(params)
		if err != nil {
			if coded := pkgerrors.As(err); coded != nil {
				return nil, coded.WithDetails(map[string]any{"index": i})
			}
			return nil, err
		}
		rows = append(rows, row)
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert predictions")
	}

	s.notifyActiveSubscribers(ctx)

	out := make([]models.Prediction, len(rows))
	for i, row := range rows {
		out[i] = *row
	}
	return out, nil
}

func buildPrediction(params CreateParams) (*models.Prediction, error) {
	if params.MatchDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "match date required")
	}
	if params.League == "" || params.Match == "" || params.Tip == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "league, match, and tip are required")
	}

	kind := params.Type
	if kind == "" {
		kind = enums.PredictionTypeSmall
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid prediction type")
	}

	odds, err := deriveOdds(params.Odds, params.ProbMax)
	if err != nil {
		return nil, err
	}

	if params.Confidence != nil && (*params.Confidence < 0 || *params.Confidence > 100) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confidence must be between 0 and 100")
	}

	stake := DeriveStake(params.Confidence)
	if params.RecommendedStake != nil {
		if *params.RecommendedStake < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "recommended stake must be at least 1")
		}
		stake = *params.RecommendedStake
	}

	return &models.Prediction{
		ID:               uuid.New(),
		MatchDate:        params.MatchDate.UTC(),
		League:           params.League,
		Match:            params.Match,
		Tip:              params.Tip,
		Odds:             odds,
		Result:           enums.PredictionResultPending,
		Type:             kind,
		Confidence:       params.Confidence,
		RecommendedStake: &stake,
		ProbMax:          params.ProbMax,
	}, nil
}

func deriveOdds(odds, probMax *decimal.Decimal) (decimal.Decimal, error) {
	if odds != nil {
		if !odds.IsPositive() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "odds must be greater than zero")
		}
		return *odds, nil
	}
	if probMax == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "either odds or prob_max is required")
	}
	if !probMax.IsPositive() || probMax.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "prob_max must be in (0, 1]")
	}
	return decimal.NewFromInt(1).Div(*probMax), nil
}

// DeriveStake maps a confidence value onto the stake bands: 80 and above
// stakes 3, 60 to 79 stakes 2, anything else (or no confidence) stakes 1.
func DeriveStake(confidence *int) int {
	if confidence == nil {
		return 1
	}
	switch {
	case *confidence >= 80:
		return 3
	case *confidence >= 60:
		return 2
	default:
		return 1
	}
}

// notifyActiveSubscribers is best-effort: failures are collected and
// logged, never surfaced to the ingestion caller.
func (s *service) notifyActiveSubscribers(ctx context.Context) {
	if s.subscribers == nil || s.notifier == nil {
		return
	}
	ids, err := s.subscribers.ActiveUserIDs(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listing notification audience failed")
		return
	}

	var failures error
	for _, id := range ids {
		if err := s.notifier.Notify(ctx, id, enums.NotificationTypeNewPredictions, "New predictions have been published."); err != nil {
			failures = multierr.Append(failures, err)
		}
	}
	if failures != nil {
		fields := map[string]any{"error": failures.Error(), "failed": len(multierr.Errors(failures)), "audience": len(ids)}
		s.logg.Warn(s.logg.WithFields(ctx, fields), "prediction fan-out partially failed")
	}
}

func (s *service) UpdateResult(ctx context.Context, id uuid.UUID, result enums.PredictionResult, finalScore *string) (*models.Prediction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prediction id required")
	}
	if !result.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid prediction result")
	}

	updated, err := s.repo.UpdateResult(ctx, id, result, finalScore)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update prediction result")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prediction not found")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prediction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload prediction")
	}

	if result.IsSettled() {
		if err := s.evaluateGuarantee(ctx, row.MatchDate); err != nil {
			return nil, err
		}
	}
	return row, nil
}

// evaluateGuarantee re-checks the graded prediction's weekly segment: a
// fully settled segment with only Return results grants next week's
// matching segment to every ordinary user. Runs after every grading event
// until the segment completes; rewriting the same grant is harmless.
func (s *service) evaluateGuarantee(ctx context.Context, matchDate time.Time) error {
	segment := week.SegmentOf(matchDate)
	start, end := week.Range(matchDate)

	rows, err := s.repo.ListInRange(ctx, start, end)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load segment predictions")
	}

	var wins, losses, returns int
	var inSegment bool
	for _, row := range rows {
		if week.SegmentOf(row.MatchDate) != segment {
			continue
		}
		inSegment = true
		switch row.Result {
		case enums.PredictionResultPending:
			return nil
		case enums.PredictionResultWon:
			wins++
		case enums.PredictionResultLoss:
			losses++
		case enums.PredictionResultReturn:
			returns++
		}
	}
	if !inSegment {
		return nil
	}
	if wins != 0 || losses != 0 || returns == 0 {
		return nil
	}

	expiry := week.SegmentExpiry(s.now(), s.access.FreeAccessAnchor, segment)
	granted, err := s.granter.GrantFreeAccess(ctx, segment, expiry)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grant free access")
	}

	fields := map[string]any{"segment": string(segment), "expiry": expiry, "granted": granted}
	s.logg.Info(s.logg.WithFields(ctx, fields), "guarantee triggered free access grant")
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "prediction id required")
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete prediction")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "prediction not found")
	}
	return nil
}

func (s *service) Fetch(ctx context.Context, status string) ([]models.Prediction, error) {
	switch status {
	case "pending":
		rows, err := s.repo.ListPending(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending predictions")
		}
		return rows, nil
	case "history":
		rows, err := s.repo.ListHistory(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prediction history")
		}
		return rows, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be pending or history")
	}
}
