package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshichaam/account_backend_go/internal/models"
	vld "github.com/hoshichaam/account_backend_go/pkg/validator"
)

type fakeIdentity struct {
	session    SessionInfo
	sessionErr error
	authErr    error
	outcome    UpdateOutcome
	updateErr  error

	calls       []string
	authEmail   string
	updateToken string
	updateAttrs UserAttributes
}

func (f *fakeIdentity) VerifySession(ctx context.Context, token string) (SessionInfo, error) {
	f.calls = append(f.calls, "verify")
	return f.session, f.sessionErr
}

func (f *fakeIdentity) Authenticate(ctx context.Context, email, password string) error {
	f.calls = append(f.calls, "authenticate")
	f.authEmail = email
	return f.authErr
}

func (f *fakeIdentity) UpdateUser(ctx context.Context, token string, attrs UserAttributes) (UpdateOutcome, error) {
	f.calls = append(f.calls, "update")
	f.updateToken = token
	f.updateAttrs = attrs
	return f.outcome, f.updateErr
}

func happyIdentity() *fakeIdentity {
	return &fakeIdentity{
		session: SessionInfo{OK: true, UserID: "u-1", Email: "user@example.com"},
		outcome: UpdateSucceeded{Email: "user@example.com"},
	}
}

var (
	testSession = models.Session{Token: "T", User: models.SessionUser{ID: "u-1", Email: "user@example.com"}}
	testRequest = models.PasswordChangeRequest{CurrentPassword: "old-pass", NewPassword: "new-pass"}
)

func changePassword(t *testing.T, idp *fakeIdentity, sess models.Session) (string, *ChangeError) {
	t.Helper()
	svc := NewPasswordService(idp, vld.New())
	email, err := svc.ChangePassword(context.Background(), sess, testRequest)
	if err == nil {
		return email, nil
	}
	var ce *ChangeError
	require.ErrorAs(t, err, &ce)
	return email, ce
}

func TestChangePassword_Success(t *testing.T) {
	idp := happyIdentity()
	email, ce := changePassword(t, idp, testSession)
	require.Nil(t, ce)
	assert.Equal(t, "user@example.com", email)
	assert.Equal(t, []string{"verify", "authenticate", "update"}, idp.calls)
	assert.Equal(t, "user@example.com", idp.authEmail)
	assert.Equal(t, "T", idp.updateToken)
	assert.Equal(t, UserAttributes{Password: "new-pass"}, idp.updateAttrs)
}

func TestChangePassword_UnauthorizedSession(t *testing.T) {
	idp := happyIdentity()
	idp.session = SessionInfo{OK: false}

	// token basi dua kali -> hasil sama, tidak ada mutasi
	for i := 0; i < 2; i++ {
		_, ce := changePassword(t, idp, testSession)
		require.NotNil(t, ce)
		assert.Equal(t, KindUnauthorizedSession, ce.Kind)
		assert.Equal(t, "error", ce.StatusMessage)
		assert.Equal(t, "Unauthorized Session", ce.Message)
	}
	assert.Equal(t, []string{"verify", "verify"}, idp.calls)
}

func TestChangePassword_InvalidCurrentPassword(t *testing.T) {
	for _, pe := range []*ProviderError{
		{Code: CodeInvalidCredentials, Status: 400, Message: "No user found with that email, or password invalid."},
		{Code: CodeBadRequest, Status: 400, Message: "Bad Request"},
		{Code: CodeUserNotFound, Status: 404, Message: "User not found"},
	} {
		idp := happyIdentity()
		idp.authErr = pe

		_, ce := changePassword(t, idp, testSession)
		require.NotNil(t, ce)
		assert.Equal(t, KindInvalidCurrentPassword, ce.Kind)
		assert.Equal(t, "Please double-check current password.", ce.Message)
		assert.NotContains(t, idp.calls, "update")
	}
}

func TestChangePassword_UnauthorizedUser(t *testing.T) {
	idp := happyIdentity()
	idp.session.Email = "someone-else@example.com"

	_, ce := changePassword(t, idp, testSession)
	require.NotNil(t, ce)
	assert.Equal(t, KindUnauthorizedUser, ce.Kind)
	assert.Equal(t, "error", ce.StatusMessage)
	assert.Equal(t, "Unauthorized User", ce.Message)
	assert.NotContains(t, idp.calls, "update")
}

func TestChangePassword_UpdateRejected(t *testing.T) {
	cases := []struct {
		name    string
		outcome UpdateOutcome
		want    string
	}{
		{"bad request is hidden", UpdateRejected{Reason: &ProviderError{Code: CodeBadRequest, Message: "Bad Request"}}, "We encountered a system error - please try again."},
		{"user not found is hidden", UpdateRejected{Reason: &ProviderError{Code: CodeUserNotFound, Message: "User not found"}}, "Please double-check current password."},
		{"other message passes through", UpdateRejected{Reason: &ProviderError{Code: CodeRejected, Message: "Password should be at least 6 characters"}}, "Password should be at least 6 characters"},
		{"missing email", UpdateRejected{Reason: &ProviderError{Code: CodeMalformed, Status: 200}}, MsgUpdateFailed},
		{"nil reason", UpdateRejected{}, MsgUpdateFailed},
		{"no outcome", nil, MsgUpdateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idp := happyIdentity()
			idp.outcome = tc.outcome

			email, ce := changePassword(t, idp, testSession)
			require.NotNil(t, ce)
			assert.Empty(t, email)
			assert.Equal(t, KindUpdateFailed, ce.Kind)
			assert.Equal(t, tc.want, ce.Message)
		})
	}
}

func TestChangePassword_TransportFailures(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")

	t.Run("verify", func(t *testing.T) {
		idp := happyIdentity()
		idp.sessionErr = boom
		_, ce := changePassword(t, idp, testSession)
		require.NotNil(t, ce)
		assert.True(t, ce.Unclassified())
		assert.Equal(t, "Unsuccessful Request", ce.Message)
		assert.ErrorIs(t, ce, boom)
	})

	t.Run("authenticate", func(t *testing.T) {
		idp := happyIdentity()
		idp.authErr = boom
		_, ce := changePassword(t, idp, testSession)
		require.NotNil(t, ce)
		assert.Equal(t, KindUnsuccessfulRequest, ce.Kind)
	})

	t.Run("update", func(t *testing.T) {
		idp := happyIdentity()
		idp.updateErr = boom
		_, ce := changePassword(t, idp, testSession)
		require.NotNil(t, ce)
		assert.Equal(t, KindUnsuccessfulRequest, ce.Kind)
	})
}

func TestChangePassword_IncompleteSession(t *testing.T) {
	idp := happyIdentity()
	_, ce := changePassword(t, idp, models.Session{Token: "T"})
	require.NotNil(t, ce)
	assert.Equal(t, KindUnsuccessfulRequest, ce.Kind)
	assert.Empty(t, idp.calls)
}

func TestAsChangeError(t *testing.T) {
	ce := AsChangeError(errors.New("whatever"))
	assert.Equal(t, KindUnsuccessfulRequest, ce.Kind)
	assert.Equal(t, "error", ce.StatusMessage)

	orig := newChangeError(KindUnauthorizedUser, MsgUnauthorizedUser, nil)
	assert.Same(t, orig, AsChangeError(orig))
}
