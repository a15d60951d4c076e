package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/cryptox"
	"github.com/dmitrijs2005/studenthub/internal/dbx"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/auth"
	"github.com/dmitrijs2005/studenthub/internal/server/config"
	"github.com/dmitrijs2005/studenthub/internal/server/mail"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

var errBadCredentials = fmt.Errorf("%w: invalid credentials", common.ErrUnauthorized)

// UserService handles accounts: registration, login, password reset,
// profiles and per-user statistics.
type UserService struct {
	repomanager   repomanager.RepositoryManager
	mailer        mail.Mailer
	log           logging.Logger
	secret        []byte
	resetValidity time.Duration
	frontendURL   string
	now           func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, mailer mail.Mailer, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repomanager:   m,
		mailer:        mailer,
		log:           log.With("service", "users"),
		secret:        []byte(cfg.SecretKey),
		resetValidity: cfg.ResetTokenValidity,
		frontendURL:   strings.TrimRight(cfg.FrontendURL, "/"),
		now:           time.Now,
	}
}

// Register creates an account. A taken student id yields common.ErrConflict.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (dto.User, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := validate.Struct(req); err != nil {
		return dto.User{}, err
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return dto.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).Create(ctx, &models.User{
		StudentID:    req.StudentID,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Department:   req.Department,
		Batch:        req.Batch,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return dto.User{}, fmt.Errorf("%w: student already registered", err)
		}
		return dto.User{}, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.Public(), nil
}

// Login checks the password of studentID. Unknown students and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (dto.User, error) {
	if err := validate.Struct(req); err != nil {
		return dto.User{}, err
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByStudentID(ctx, strings.TrimSpace(req.StudentID))
	if err != nil {
		if isNotFound(err) {
			return dto.User{}, errBadCredentials
		}
		return dto.User{}, err
	}

	if err := cryptox.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return dto.User{}, errBadCredentials
		}
		return dto.User{}, err
	}
	return user.Public(), nil
}

// ForgotPassword issues a reset token for the account registered with email,
// stores its hash and mails the reset link.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var("email", email, "required,looseemail"); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return notFound(err, "user")
	}

	token, err := auth.GenerateResetToken(user.ID, s.secret, s.resetValidity)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := repo.SetResetToken(ctx, user.ID, cryptox.HashToken(token), s.now().Add(s.resetValidity)); err != nil {
		return err
	}

	link := s.frontendURL + "/reset-password?" + url.Values{"token": {token}, "email": {user.Email}}.Encode()
	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset your StudentHub password",
		Text:    "Open this link within the next hour to choose a new password:\n" + link,
		HTML:    `<p>Open <a href="` + link + `">this link</a> within the next hour to choose a new password.</p>`,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "reset mail failed", "user_id", user.ID, "err", err)
		return fmt.Errorf("%w: could not send reset mail", common.ErrInternal)
	}
	return nil
}

// ResetPassword sets a new password when token is the latest one issued for
// the account behind email and has not expired. The token is single use.
func (s *UserService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	invalid := fmt.Errorf("%w: invalid or expired token", common.ErrUnauthorized)

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if isNotFound(err) {
			return invalid
		}
		return err
	}

	userID, err := auth.GetUserIDFromToken(req.Token, s.secret)
	if errors.Is(err, common.ErrTokenExpired) {
		return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}
	if err != nil || userID != user.ID || user.ResetTokenHash == "" ||
		!cryptox.TokenMatches(user.ResetTokenHash, req.Token) {
		return invalid
	}
	if s.now().After(user.ResetExpires) {
		return fmt.Errorf("%w: %w", common.ErrUnauthorized, common.ErrTokenExpired)
	}

	hash, err := cryptox.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (dto.User, error) {
	if err := checkID(userID); err != nil {
		return dto.User{}, notFound(err, "user")
	}
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, userID)
	if err != nil {
		return dto.User{}, notFound(err, "user")
	}
	return user.Public(), nil
}

// UpdateProfile applies the non-empty fields of patch. The avatar is applied
// whenever it is present, so an empty string removes it. A new name is also
// written to the author fields of the user's posts and comments.
func (s *UserService) UpdateProfile(ctx context.Context, patch dto.ProfilePatch) (dto.User, error) {
	if err := validate.Struct(patch); err != nil {
		return dto.User{}, err
	}
	if err := checkID(patch.UserID); err != nil {
		return dto.User{}, notFound(err, "user")
	}

	for _, f := range []**string{&patch.Name, &patch.Email, &patch.Phone, &patch.Department} {
		if *f != nil && strings.TrimSpace(**f) == "" {
			*f = nil
		}
	}

	var updated dto.User
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.GetByID(ctx, patch.UserID)
		if err != nil {
			return notFound(err, "user")
		}

		oldName := user.Name
		pub := user.Public()
		patch.Apply(&pub)
		user.ApplyProfile(pub)

		if err := repo.UpdateProfile(ctx, user); err != nil {
			return err
		}
		if user.Name != oldName {
			posts, comments, err := renameAuthor(ctx, s.repomanager.Records(tx), user.ID, user.Name)
			if err != nil {
				return err
			}
			s.log.Debug(ctx, "author renamed", "user_id", user.ID, "posts", posts, "comments", comments)
		}
		updated = user.Public()
		return nil
	})
	return updated, err
}

// Stats counts the records of userID across collections.
func (s *UserService) Stats(ctx context.Context, userID string) (dto.Stats, error) {
	if err := checkID(userID); err != nil {
		return dto.Stats{}, notFound(err, "user")
	}

	repo := s.repomanager.Records(s.repomanager.Conn())
	counts, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return dto.Stats{}, err
	}
	total, err := repo.SumNumber(ctx, dto.Expenses, userID, "amount")
	if err != nil {
		return dto.Stats{}, err
	}

	return dto.Stats{
		TotalExpenses:      counts[dto.Expenses],
		TotalExpenseAmount: total,
		TotalFeedPosts:     counts[dto.Feed],
		TotalEvents:        counts[dto.Events],
		TotalTasks:         counts[dto.Tasks],
		TotalDiaryEntries:  counts[dto.Diary],
	}, nil
}
