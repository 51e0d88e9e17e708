package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/youscore/youscore-backend/api/middleware"
	"github.com/youscore/youscore-backend/api/responses"
	"github.com/youscore/youscore-backend/api/validators"
	"github.com/youscore/youscore-backend/internal/users"
	"github.com/youscore/youscore-backend/pkg/enums"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/pagination"
)

type updateUserRequest struct {
	Role               *string    `json:"role" validate:"omitempty,oneof=admin user"`
	SubscriptionPlan   *string    `json:"subscription_plan" validate:"omitempty,oneof=none weekly monthly"`
	SubscriptionStatus *string    `json:"subscription_status" validate:"omitempty,oneof=inactive pending active expired"`
	SubscriptionStart  *time.Time `json:"subscription_start"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	FreeAccessMidWeek  *time.Time `json:"free_access_mid_week"`
	FreeAccessWeekend  *time.Time `json:"free_access_weekend"`
}

type subscriptionRequest struct {
	Plan            string  `json:"plan" validate:"required,oneof=weekly monthly"`
	PaymentProofRef *string `json:"payment_proof_ref"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type changeEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// pathUserID parses {id} and rejects non-admin callers acting on another
// user's account.
func pathUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	if middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin) {
		return id, nil
	}
	if middleware.UserIDFromContext(r.Context()) != id.String() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot act on another account")
	}
	return id, nil
}

func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			params.Limit = limit
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		var body updateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := users.UpdateParams{
			SubscriptionStart:  body.SubscriptionStart,
			SubscriptionExpiry: body.SubscriptionExpiry,
			FreeAccessMidWeek:  body.FreeAccessMidWeek,
			FreeAccessWeekend:  body.FreeAccessWeekend,
		}
		if body.Role != nil {
			role := enums.Role(*body.Role)
			params.Role = &role
		}
		if body.SubscriptionPlan != nil {
			plan := enums.SubscriptionPlan(*body.SubscriptionPlan)
			params.SubscriptionPlan = &plan
		}
		if body.SubscriptionStatus != nil {
			status := enums.SubscriptionStatus(*body.SubscriptionStatus)
			params.SubscriptionStatus = &status
		}

		user, err := svc.Update(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UserDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func SubscriptionRequest(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body subscriptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.RequestSubscription(r.Context(), id, enums.SubscriptionPlan(body.Plan), body.PaymentProofRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func SubscriptionApprove(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}
		user, err := svc.ApproveSubscription(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func SubscriptionReset(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}
		user, err := svc.ResetSubscription(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UserChangePassword(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body changePasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangePassword(r.Context(), id, body.CurrentPassword, body.NewPassword); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "password_changed"})
	}
}

func UserChangeEmail(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body changeEmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.ChangeEmail(r.Context(), id, body.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
