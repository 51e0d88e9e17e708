package controllers

import (
	"net/http"

	"github.com/youscore/youscore-backend/api/responses"
	"github.com/youscore/youscore-backend/api/validators"
	"github.com/youscore/youscore-backend/internal/settings"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/types"
)

type replaceSettingsRequest struct {
	PageTitle          string                   `json:"page_title" validate:"required"`
	LogoURL            *string                  `json:"logo_url"`
	SupportedLeagues   []string                 `json:"supported_leagues"`
	LandingSections    []types.LandingSection   `json:"landing_sections" validate:"omitempty,dive"`
	SubscriptionPrices types.SubscriptionPrices `json:"subscription_prices"`
	BankAccounts       []string                 `json:"bank_accounts"`
	CryptoWallets      []string                 `json:"crypto_wallets"`
}

func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func SettingsReplace(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body replaceSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Replace(r.Context(), settings.ReplaceParams{
			PageTitle:          body.PageTitle,
			LogoURL:            body.LogoURL,
			SupportedLeagues:   body.SupportedLeagues,
			LandingSections:    body.LandingSections,
			SubscriptionPrices: body.SubscriptionPrices,
			BankAccounts:       body.BankAccounts,
			CryptoWallets:      body.CryptoWallets,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
