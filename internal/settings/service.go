package settings

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/youscore/youscore-backend/pkg/db/models"
	pkgerrors "github.com/youscore/youscore-backend/pkg/errors"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/types"
)

// Service exposes the public settings aggregate and its admin replace.
type Service interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Replace(ctx context.Context, params ReplaceParams) (*models.AppSettings, error)
}

// ReplaceParams is the full aggregate; a replace overwrites every field.
type ReplaceParams struct {
	PageTitle          string
	LogoURL            *string
	SupportedLeagues   []string
	LandingSections    []types.LandingSection
	SubscriptionPrices types.SubscriptionPrices
	BankAccounts       []string
	CryptoWallets      []string
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the settings service dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context) (*models.AppSettings, error) {
	row, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "settings not initialized")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	return row, nil
}

func (s *service) Replace(ctx context.Context, params ReplaceParams) (*models.AppSettings, error) {
	if params.PageTitle == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page title required")
	}
	for _, section := range params.LandingSections {
		if section.Key == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "landing section key required")
		}
	}

	row := &models.AppSettings{
		ID:                 models.SettingsRowID,
		PageTitle:          params.PageTitle,
		LogoURL:            params.LogoURL,
		SupportedLeagues:   params.SupportedLeagues,
		LandingSections:    params.LandingSections,
		SubscriptionPrices: params.SubscriptionPrices,
		BankAccounts:       pq.StringArray(params.BankAccounts),
		CryptoWallets:      pq.StringArray(params.CryptoWallets),
	}
	if err := s.repo.Replace(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace settings")
	}
	return s.Get(ctx)
}
