// Package identity fronts the Cognito user pool: sign-up, sign-in, token
// refresh, user deletion and password reset. Provider exceptions are
// translated into apperr kinds with user-facing messages.
package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/auth"
)

// CognitoAPI is the subset of *cognitoidentityprovider.Client in use.
type CognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminGetUser(ctx context.Context, in *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	DeleteUser(ctx context.Context, in *cip.DeleteUserInput, optFns ...func(*cip.Options)) (*cip.DeleteUserOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
}

// TokenPair is what a successful sign-in yields.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	client   CognitoAPI
	poolID   string
	clientID string
	session  auth.SessionStore
	log      *zap.Logger
}

func NewService(client CognitoAPI, poolID, clientID string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, poolID: poolID, clientID: clientID, log: log}
}

// SignUp registers email and returns the new user's uuid. An existing
// unverified account gets its confirmation code resent and a Conflict.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	out, err := s.client.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(s.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
		ClientMetadata: map[string]string{"email": email},
	})
	if err == nil {
		return aws.ToString(out.UserSub), nil
	}

	var exists *types.UsernameExistsException
	var badPassword *types.InvalidPasswordException
	switch {
	case errors.As(err, &exists):
		return s.handleExisting(ctx, email)
	case errors.As(err, &badPassword):
		return "", apperr.Wrap(apperr.KindValidationFailed, msgPasswordPolicy, err)
	default:
		return "", s.upstream("sign_up", err)
	}
}

func (s *Service) handleExisting(ctx context.Context, email string) (string, error) {
	u, err := s.client.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(s.poolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return "", s.upstream("admin_get_user", err)
	}

	for _, a := range u.UserAttributes {
		if aws.ToString(a.Name) != "email_verified" {
			continue
		}
		switch aws.ToString(a.Value) {
		case "true":
			return "", apperr.New(apperr.KindConflict, msgAlreadyRegistered)
		case "false":
			if _, err := s.client.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
				ClientId: aws.String(s.clientID),
				Username: aws.String(email),
			}); err != nil {
				return "", s.upstream("resend_confirmation_code", err)
			}
			s.log.Info("confirmation code resent", zap.String("component", "identity"))
			return "", apperr.New(apperr.KindConflict, msgPendingResent)
		}
	}
	return aws.ToString(u.Username), nil
}

// SignIn runs the USER_PASSWORD_AUTH flow.
func (s *Service) SignIn(ctx context.Context, email, password string) (TokenPair, error) {
	out, err := s.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(s.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		var notAuth *types.NotAuthorizedException
		var notConfirmed *types.UserNotConfirmedException
		var notFound *types.UserNotFoundException
		switch {
		case errors.As(err, &notAuth), errors.As(err, &notFound):
			return TokenPair{}, apperr.Wrap(apperr.KindAuthenticationRequired, msgWrongCredentials, err)
		case errors.As(err, &notConfirmed):
			return TokenPair{}, apperr.Wrap(apperr.KindAuthenticationRequired, msgNotConfirmed, err)
		default:
			return TokenPair{}, s.upstream("initiate_auth", err)
		}
	}
	if out.AuthenticationResult == nil {
		return TokenPair{}, apperr.New(apperr.KindAuthenticationRequired, msgWrongCredentials)
	}
	return TokenPair{
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		RefreshToken: aws.ToString(out.AuthenticationResult.RefreshToken),
	}, nil
}

// Refresh exchanges refreshToken for a new access token and writes both
// cookies. The provider usually omits a new refresh token; the presented one
// is written back then. A rejected refresh token clears the session.
func (s *Service) Refresh(ctx context.Context, w http.ResponseWriter, refreshToken string) error {
	if refreshToken == "" {
		s.session.Clear(w)
		return apperr.New(apperr.KindSessionExpired, msgRefreshMissing)
	}
	out, err := s.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(s.clientID),
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		var notAuth *types.NotAuthorizedException
		if errors.As(err, &notAuth) {
			s.session.Clear(w)
			return apperr.Wrap(apperr.KindSessionExpired, msgRefreshInvalid, err)
		}
		return s.upstream("initiate_auth_refresh", err)
	}
	if out.AuthenticationResult == nil {
		s.session.Clear(w)
		return apperr.New(apperr.KindSessionExpired, msgRefreshInvalid)
	}

	s.session.Write(w, auth.AccessTokenCookie, aws.ToString(out.AuthenticationResult.AccessToken))
	next := aws.ToString(out.AuthenticationResult.RefreshToken)
	if next == "" {
		next = refreshToken
	}
	s.session.Write(w, auth.RefreshTokenCookie, next)
	return nil
}

// DeleteUser removes the caller's account. A rejected access token clears
// the session.
func (s *Service) DeleteUser(ctx context.Context, w http.ResponseWriter, accessToken string) error {
	_, err := s.client.DeleteUser(ctx, &cip.DeleteUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		var notAuth *types.NotAuthorizedException
		if errors.As(err, &notAuth) {
			s.session.Clear(w)
			return apperr.Wrap(apperr.KindInvalidToken, msgDeleteInvalid, err)
		}
		return s.upstream("delete_user", err)
	}
	s.session.Clear(w)
	return nil
}

// ForgotPassword sends a reset code to email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(s.clientID),
		Username: aws.String(email),
	})
	if err != nil {
		var notFound *types.UserNotFoundException
		if errors.As(err, &notFound) {
			return apperr.Wrap(apperr.KindNotFound, msgUserNotFound, err)
		}
		return s.upstream("forgot_password", err)
	}
	return nil
}

// ResetPassword confirms a reset code and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := s.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(s.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err == nil {
		return nil
	}

	var (
		notFound    *types.UserNotFoundException
		mismatch    *types.CodeMismatchException
		expired     *types.ExpiredCodeException
		badPassword *types.InvalidPasswordException
	)
	switch {
	case errors.As(err, &notFound):
		return apperr.Wrap(apperr.KindNotFound, msgUserNotFound, err)
	case errors.As(err, &mismatch):
		return apperr.Wrap(apperr.KindBadRequest, msgCodeMismatch, err)
	case errors.As(err, &expired):
		return apperr.Wrap(apperr.KindBadRequest, msgCodeExpired, err)
	case errors.As(err, &badPassword):
		return apperr.Wrap(apperr.KindValidationFailed, msgPasswordPolicy, err)
	default:
		return s.upstream("confirm_forgot_password", err)
	}
}

func (s *Service) upstream(op string, err error) error {
	var invalid *types.InvalidParameterException
	if errors.As(err, &invalid) {
		return apperr.Wrap(apperr.KindBadRequest, msgInvalidInput, err)
	}
	s.log.Error("cognito call failed", zap.String("component", "identity"), zap.String("op", op), zap.Error(err))
	return apperr.Wrap(apperr.KindUpstreamUnavailable, msgUpstream, err)
}
