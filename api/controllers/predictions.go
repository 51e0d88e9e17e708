package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/youscore/youscore-backend/api/middleware"
	"github.com/youscore/youscore-backend/api/responses"
	"github.com/youscore/youscore-backend/api/validators"
	"github.com/youscore/youscore-backend/internal/predictions"
	predictionscsv "github.com/youscore/youscore-backend/internal/predictions/csv"
	"github.com/youscore/youscore-backend/internal/users"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
)

type createPredictionRequest struct {
	MatchDate        time.Time        `json:"match_date" validate:"required"`
	League           string           `json:"league" validate:"required"`
	Match            string           `json:"match" validate:"required"`
	Tip              string           `json:"tip" validate:"required"`
	Odds             *decimal.Decimal `json:"odds"`
	ProbMax          *decimal.Decimal `json:"prob_max"`
	Type             string           `json:"type" validate:"omitempty,oneof=big small"`
	Confidence       *int             `json:"confidence" validate:"omitempty,min=0,max=100"`
	RecommendedStake *int             `json:"recommended_stake" validate:"omitempty,min=1"`
}

type createPredictionsRequest struct {
	Predictions []createPredictionRequest `json:"predictions" validate:"required,min=1,dive"`
}

type importPredictionsRequest struct {
	CSV string `json:"csv" validate:"required"`
}

type updateResultRequest struct {
	Result     string  `json:"result" validate:"required,oneof=Pending Won Loss Return"`
	FinalScore *string `json:"final_score"`
}

func PredictionsCreate(svc predictions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPredictionsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch := make([]predictions.CreateParams, len(body.Predictions))
		for i, item := range body.Predictions {
			batch[i] = predictions.CreateParams{
				MatchDate:        item.MatchDate,
				League:           item.League,
				Match:            item.Match,
				Tip:              item.Tip,
				Odds:             item.Odds,
				ProbMax:          item.ProbMax,
				Type:             enums.PredictionType(item.Type),
				Confidence:       item.Confidence,
				RecommendedStake: item.RecommendedStake,
			}
		}

		rows, err := svc.Add(r.Context(), batch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rows)
	}
}

// PredictionsImport stages CSV text into rows without persisting anything;
// the client reviews the staging output and commits via PredictionsCreate.
func PredictionsImport(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body importPredictionsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		staged, err := predictionscsv.ParseStaged(body.CSV)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}
		responses.WriteSuccess(w, staged)
	}
}

// PredictionsList serves the pending board and the graded history. The
// pending board is the paid surface: non-admin callers need an active
// subscription or a live free-access grant for the current segment.
func PredictionsList(svc predictions.Service, userSvc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		if status == "" {
			status = "pending"
		}

		if status == "pending" && middleware.RoleFromContext(r.Context()) != string(enums.RoleAdmin) {
			userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
				return
			}
			user, err := userSvc.Get(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !users.CanView(user, time.Now().UTC()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "active subscription required"))
				return
			}
		}

		rows, err := svc.Fetch(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func PredictionUpdateResult(svc predictions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid prediction id"))
			return
		}

		var body updateResultRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpdateResult(r.Context(), id, enums.PredictionResult(body.Result), body.FinalScore)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func PredictionDelete(svc predictions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid prediction id"))
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func StatsWeekly(svc predictions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.WeeklyStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
