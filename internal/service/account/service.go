package account

import (
	"context"
	"time"

	"github.com/fishonary/catalog/internal/app"
	"github.com/fishonary/catalog/internal/db"
	caterr "github.com/fishonary/catalog/internal/errors"
	"github.com/fishonary/catalog/internal/repository"
)

// Service is the session-facing surface over the catalog store. The auth
// collaborator resolves a social sign-in to an {email, display name} pair
// before calling in; the store never sees tokens, providers, or credentials.
type Service struct {
	appCtx  *app.AppContext
	catalog *repository.CatalogRepository
}

// NewAccountService creates a new account service with dependencies from
// AppContext.
func NewAccountService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		catalog: appCtx.Catalog,
	}
}

// SignIn returns the account for the given email, creating it on first
// resolution. A create racing on the same email collapses to re-reading the
// existing row; a second row never appears.
func (s *Service) SignIn(ctx context.Context, email, displayName string) (*db.User, error) {
	s.appCtx.Logger.Debug("SignIn called", "email", email)

	user, err := s.catalog.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	created, err := s.catalog.CreateUser(ctx, email, displayName)
	if caterr.IsConflict(err) {
		s.appCtx.Logger.Debug("account already exists, reusing", "email", email)
		return s.catalog.FindUserByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("account created", "user_id", created.ID)
	return created, nil
}

// Rename changes the profile display name.
func (s *Service) Rename(ctx context.Context, userID uint64, name string) (*db.User, error) {
	s.appCtx.Logger.Debug("Rename called", "user_id", userID)
	return s.catalog.UpdateUserName(ctx, userID, name)
}

// SetPhoto replaces the profile photo payload.
func (s *Service) SetPhoto(ctx context.Context, userID uint64, photo string) (*db.User, error) {
	return s.catalog.UpdateUserPhoto(ctx, userID, photo)
}

// Subscribe marks the account as a subscriber for the given period, stamping
// the subscription start.
func (s *Service) Subscribe(ctx context.Context, userID uint64, period int) (*db.User, error) {
	if period <= 0 {
		return nil, caterr.Validation("period must be positive")
	}
	s.appCtx.Logger.Info("subscription started", "user_id", userID, "period", period)
	return s.catalog.UpdateUserSubscription(ctx, userID, true, time.Now().UTC().Format(time.RFC3339), period)
}

// Unsubscribe clears the subscription state.
func (s *Service) Unsubscribe(ctx context.Context, userID uint64) (*db.User, error) {
	s.appCtx.Logger.Info("subscription cleared", "user_id", userID)
	return s.catalog.UpdateUserSubscription(ctx, userID, false, "", 0)
}
