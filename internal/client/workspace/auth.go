package workspace

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

// Register creates the account and signs it in.
func (w *Workspace) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return models.User{}, err
	}

	u, err := w.api.Register(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	if err := w.session.Login(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Login authenticates against the auth service and switches the session to
// the returned profile. Logging in needs the service; there is no offline
// login.
func (w *Workspace) Login(ctx context.Context, studentID, password string) (models.User, error) {
	req := models.LoginRequest{StudentID: strings.TrimSpace(studentID), Password: password}
	if err := validate.Struct(req); err != nil {
		return models.User{}, err
	}

	u, err := w.api.Login(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	if err := w.session.Login(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (w *Workspace) Logout(ctx context.Context) error {
	return w.session.Logout(ctx)
}

// ForgotPassword asks the service to email a reset link.
func (w *Workspace) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var("email", email, "required,looseemail"); err != nil {
		return err
	}
	return w.api.ForgotPassword(ctx, email)
}

// HandleDeepLink records a reset link opened by the user.
func (w *Workspace) HandleDeepLink(ctx context.Context, rawURL string) (bool, error) {
	return w.session.HandleDeepLink(ctx, rawURL)
}

// ResetPassword sets a new password. An empty token or email is taken from
// the pending reset link, which is consumed once the reset succeeds.
func (w *Workspace) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	pending, hasPending := w.session.PendingReset()
	if token == "" && hasPending {
		token = pending.Token
	}
	if email == "" && hasPending {
		email = pending.Email
	}

	req := models.ResetPasswordRequest{Email: strings.TrimSpace(email), Token: token, NewPassword: newPassword}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := w.api.ResetPassword(ctx, req); err != nil {
		return err
	}
	if hasPending && pending.Token == token {
		w.session.ConsumePendingReset()
	}
	return nil
}
