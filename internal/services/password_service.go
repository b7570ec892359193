package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hoshichaam/account_backend_go/internal/models"
)

// IdentityProvider adalah kontrak minimal yang dibutuhkan PasswordService.
type IdentityProvider interface {
	VerifySession(ctx context.Context, token string) (SessionInfo, error)
	Authenticate(ctx context.Context, email, password string) error
	UpdateUser(ctx context.Context, token string, attrs UserAttributes) (UpdateOutcome, error)
}

type ErrorKind string

const (
	KindUnauthorizedSession    ErrorKind = "UnauthorizedSession"
	KindInvalidCurrentPassword ErrorKind = "InvalidCurrentPassword"
	KindUnauthorizedUser       ErrorKind = "UnauthorizedUser"
	KindUpdateFailed           ErrorKind = "UpdateFailed"
	KindUnsuccessfulRequest    ErrorKind = "UnsuccessfulRequest"
)

const (
	StatusMessageError = "error"

	MsgUnauthorizedSession  = "Unauthorized Session"
	MsgCheckCurrentPassword = "Please double-check current password."
	MsgUnauthorizedUser     = "Unauthorized User"
	MsgSystemError          = "We encountered a system error - please try again."
	MsgUpdateFailed         = "Unable to update password - please try again."
	MsgUnsuccessfulRequest  = "Unsuccessful Request"
)

// ChangeError membawa kode mesin (Kind, StatusMessage) dan pesan untuk user.
type ChangeError struct {
	Kind          ErrorKind
	StatusMessage string
	Message       string
	Err           error
}

func (e *ChangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ChangeError) Unwrap() error { return e.Err }

// Unclassified reports whether the failure is the catch-all kind.
func (e *ChangeError) Unclassified() bool { return e.Kind == KindUnsuccessfulRequest }

func newChangeError(kind ErrorKind, msg string, cause error) *ChangeError {
	return &ChangeError{Kind: kind, StatusMessage: StatusMessageError, Message: msg, Err: cause}
}

// AsChangeError normalizes any error into a *ChangeError; unknown errors become UnsuccessfulRequest.
func AsChangeError(err error) *ChangeError {
	var ce *ChangeError
	if errors.As(err, &ce) {
		return ce
	}
	return newChangeError(KindUnsuccessfulRequest, MsgUnsuccessfulRequest, err)
}

type PasswordService struct {
	idp      IdentityProvider
	validate *validator.Validate
}

func NewPasswordService(idp IdentityProvider, v *validator.Validate) *PasswordService {
	return &PasswordService{idp: idp, validate: v}
}

// ChangePassword verifies the session and the current password, then asks the
// identity provider to set the new one. It returns the account email on success.
func (s *PasswordService) ChangePassword(ctx context.Context, sess models.Session, req models.PasswordChangeRequest) (string, error) {
	if err := s.validate.Struct(sess); err != nil {
		return "", newChangeError(KindUnsuccessfulRequest, MsgUnsuccessfulRequest, fmt.Errorf("invalid session context: %w", err))
	}

	// 1) token sesi masih valid di provider?
	check, err := s.idp.VerifySession(ctx, sess.Token)
	if err != nil {
		return "", newChangeError(KindUnsuccessfulRequest, MsgUnsuccessfulRequest, err)
	}
	if !check.OK {
		return "", newChangeError(KindUnauthorizedSession, MsgUnauthorizedSession, nil)
	}

	// 2) password saat ini benar?
	if err := s.idp.Authenticate(ctx, sess.User.Email, req.CurrentPassword); err != nil {
		var pe *ProviderError
		if !errors.As(err, &pe) {
			return "", newChangeError(KindUnsuccessfulRequest, MsgUnsuccessfulRequest, err)
		}
		return "", newChangeError(KindInvalidCurrentPassword, MsgCheckCurrentPassword, err)
	}

	// 3) pemilik token harus sama dengan user di sesi
	if check.Email != sess.User.Email {
		return "", newChangeError(KindUnauthorizedUser, MsgUnauthorizedUser, nil)
	}

	outcome, err := s.idp.UpdateUser(ctx, sess.Token, UserAttributes{Password: req.NewPassword})
	if err != nil {
		return "", newChangeError(KindUnsuccessfulRequest, MsgUnsuccessfulRequest, err)
	}
	switch o := outcome.(type) {
	case UpdateSucceeded:
		return o.Email, nil
	case UpdateRejected:
		if o.Reason == nil {
			return "", newChangeError(KindUpdateFailed, MsgUpdateFailed, nil)
		}
		return "", newChangeError(KindUpdateFailed, displayMessage(o.Reason), o.Reason)
	default:
		return "", newChangeError(KindUpdateFailed, MsgUpdateFailed, nil)
	}
}

// displayMessage menyembunyikan wording internal provider dan tidak
// mengonfirmasi ada/tidaknya akun.
func displayMessage(pe *ProviderError) string {
	if pe == nil {
		return MsgUpdateFailed
	}
	switch pe.Code {
	case CodeBadRequest:
		return MsgSystemError
	case CodeUserNotFound:
		return MsgCheckCurrentPassword
	case CodeMalformed:
		return MsgUpdateFailed
	}
	if pe.Message == "" {
		return MsgUpdateFailed
	}
	return pe.Message
}
