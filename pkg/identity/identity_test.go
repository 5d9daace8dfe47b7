package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
)

type fakeCognito struct {
	signUpErr     error
	emailVerified string
	resent        int

	initiateOut *cip.InitiateAuthOutput
	initiateErr error
	lastFlow    types.AuthFlowType
	lastParams  map[string]string

	deleteErr  error
	forgotErr  error
	confirmErr error
}

func (f *fakeCognito) SignUp(ctx context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &cip.SignUpOutput{UserSub: aws.String("sub-" + aws.ToString(in.Username))}, nil
}

func (f *fakeCognito) AdminGetUser(ctx context.Context, in *cip.AdminGetUserInput, _ ...func(*cip.Options)) (*cip.AdminGetUserOutput, error) {
	out := &cip.AdminGetUserOutput{Username: aws.String("existing-uuid")}
	if f.emailVerified != "" {
		out.UserAttributes = []types.AttributeType{
			{Name: aws.String("email"), Value: in.Username},
			{Name: aws.String("email_verified"), Value: aws.String(f.emailVerified)},
		}
	}
	return out, nil
}

func (f *fakeCognito) ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, _ ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error) {
	f.resent++
	return &cip.ResendConfirmationCodeOutput{}, nil
}

func (f *fakeCognito) InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.lastFlow = in.AuthFlow
	f.lastParams = in.AuthParameters
	return f.initiateOut, f.initiateErr
}

func (f *fakeCognito) DeleteUser(ctx context.Context, in *cip.DeleteUserInput, _ ...func(*cip.Options)) (*cip.DeleteUserOutput, error) {
	return &cip.DeleteUserOutput{}, f.deleteErr
}

func (f *fakeCognito) ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, f.forgotErr
}

func (f *fakeCognito) ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	return &cip.ConfirmForgotPasswordOutput{}, f.confirmErr
}

func newService(f *fakeCognito) *Service {
	return NewService(f, "pool", "client", nil)
}

func cookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("new user", func(t *testing.T) {
		id, err := newService(&fakeCognito{}).SignUp(ctx, "a@example.com", "pass1234")
		require.NoError(t, err)
		assert.Equal(t, "sub-a@example.com", id)
	})

	t.Run("verified duplicate", func(t *testing.T) {
		f := &fakeCognito{signUpErr: &types.UsernameExistsException{}, emailVerified: "true"}
		_, err := newService(f).SignUp(ctx, "a@example.com", "pass1234")
		require.ErrorIs(t, err, apperr.ErrConflict)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, msgAlreadyRegistered, ae.Message)
		assert.Zero(t, f.resent)
	})

	t.Run("unverified duplicate resends", func(t *testing.T) {
		f := &fakeCognito{signUpErr: &types.UsernameExistsException{}, emailVerified: "false"}
		_, err := newService(f).SignUp(ctx, "a@example.com", "pass1234")
		require.ErrorIs(t, err, apperr.ErrConflict)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, msgPendingResent, ae.Message)
		assert.Equal(t, 1, f.resent)
	})

	t.Run("duplicate without verification attribute", func(t *testing.T) {
		f := &fakeCognito{signUpErr: &types.UsernameExistsException{}}
		id, err := newService(f).SignUp(ctx, "a@example.com", "pass1234")
		require.NoError(t, err)
		assert.Equal(t, "existing-uuid", id)
	})

	t.Run("weak password", func(t *testing.T) {
		f := &fakeCognito{signUpErr: &types.InvalidPasswordException{}}
		_, err := newService(f).SignUp(ctx, "a@example.com", "x")
		require.ErrorIs(t, err, apperr.ErrValidationFailed)
	})

	t.Run("provider down", func(t *testing.T) {
		f := &fakeCognito{signUpErr: errors.New("dial tcp: i/o timeout")}
		_, err := newService(f).SignUp(ctx, "a@example.com", "pass1234")
		require.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	f := &fakeCognito{initiateOut: &cip.InitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{
		AccessToken:  aws.String("at"),
		RefreshToken: aws.String("rt"),
	}}}
	pair, err := newService(f).SignIn(ctx, "a@example.com", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "at", RefreshToken: "rt"}, pair)
	assert.Equal(t, types.AuthFlowTypeUserPasswordAuth, f.lastFlow)
	assert.Equal(t, "a@example.com", f.lastParams["USERNAME"])

	_, err = newService(&fakeCognito{initiateErr: &types.NotAuthorizedException{}}).SignIn(ctx, "a@example.com", "bad")
	require.ErrorIs(t, err, apperr.ErrAuthenticationRequired)

	_, err = newService(&fakeCognito{initiateErr: &types.UserNotConfirmedException{}}).SignIn(ctx, "a@example.com", "pass")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindAuthenticationRequired, ae.Kind)
	assert.Equal(t, msgNotConfirmed, ae.Message)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotated refresh token", func(t *testing.T) {
		f := &fakeCognito{initiateOut: &cip.InitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String("new-at"),
			RefreshToken: aws.String("new-rt"),
		}}}
		rec := httptest.NewRecorder()
		require.NoError(t, newService(f).Refresh(ctx, rec, "old-rt"))
		assert.Equal(t, types.AuthFlowTypeRefreshTokenAuth, f.lastFlow)
		assert.Equal(t, "old-rt", f.lastParams["REFRESH_TOKEN"])

		c := cookies(rec)
		assert.Equal(t, "new-at", c[auth.AccessTokenCookie].Value)
		assert.Equal(t, "new-rt", c[auth.RefreshTokenCookie].Value)
	})

	t.Run("refresh token omitted is written back", func(t *testing.T) {
		f := &fakeCognito{initiateOut: &cip.InitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{
			AccessToken: aws.String("new-at"),
		}}}
		rec := httptest.NewRecorder()
		require.NoError(t, newService(f).Refresh(ctx, rec, "old-rt"))
		assert.Equal(t, "old-rt", cookies(rec)[auth.RefreshTokenCookie].Value)
	})

	t.Run("rejected clears session", func(t *testing.T) {
		f := &fakeCognito{initiateErr: &types.NotAuthorizedException{}}
		rec := httptest.NewRecorder()
		err := newService(f).Refresh(ctx, rec, "old-rt")
		require.ErrorIs(t, err, apperr.ErrSessionExpired)

		c := cookies(rec)
		require.Contains(t, c, auth.AccessTokenCookie)
		require.Contains(t, c, auth.RefreshTokenCookie)
		assert.Negative(t, c[auth.AccessTokenCookie].MaxAge)
		assert.Negative(t, c[auth.RefreshTokenCookie].MaxAge)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	rec := httptest.NewRecorder()
	require.NoError(t, newService(&fakeCognito{}).DeleteUser(ctx, rec, "at"))

	rec = httptest.NewRecorder()
	err := newService(&fakeCognito{deleteErr: &types.NotAuthorizedException{}}).DeleteUser(ctx, rec, "at")
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
	assert.Negative(t, cookies(rec)[auth.AccessTokenCookie].MaxAge)
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, newService(&fakeCognito{}).ForgotPassword(ctx, "a@example.com"))
	err := newService(&fakeCognito{forgotErr: &types.UserNotFoundException{}}).ForgotPassword(ctx, "a@example.com")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	cases := map[string]struct {
		err  error
		want error
		msg  string
	}{
		"not found": {&types.UserNotFoundException{}, apperr.ErrNotFound, msgUserNotFound},
		"mismatch":  {&types.CodeMismatchException{}, apperr.ErrBadRequest, msgCodeMismatch},
		"expired":   {&types.ExpiredCodeException{}, apperr.ErrBadRequest, msgCodeExpired},
		"password":  {&types.InvalidPasswordException{}, apperr.ErrValidationFailed, msgPasswordPolicy},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := newService(&fakeCognito{confirmErr: tc.err}).ResetPassword(ctx, "a@example.com", "123456", "newpass1")
			require.ErrorIs(t, err, tc.want)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tc.msg, ae.Message)
		})
	}
}
