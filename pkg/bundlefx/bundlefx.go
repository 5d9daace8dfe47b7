// Package bundlefx provides the configuration, AWS clients and domain
// services shared by the HTTP server and the reminder job.
package bundlefx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/joeydtaylor/terakoya-core/pkg/awsx"
	"github.com/joeydtaylor/terakoya-core/pkg/booking"
	"github.com/joeydtaylor/terakoya-core/pkg/config"
	"github.com/joeydtaylor/terakoya-core/pkg/identity"
	"github.com/joeydtaylor/terakoya-core/pkg/mail"
	"github.com/joeydtaylor/terakoya-core/pkg/middleware/logger"
	"github.com/joeydtaylor/terakoya-core/pkg/reminder"
	"github.com/joeydtaylor/terakoya-core/pkg/user"
)

func ProvideAWSConfig(cfg *config.Config) (aws.Config, error) {
	return awsx.LoadAWSConfig(context.Background(), cfg)
}

func ProvideBookingRepository(db *dynamodb.Client, cfg *config.Config) *booking.Repository {
	return booking.NewRepository(db, cfg.DynamoDB.BookingTable)
}

func ProvideUserRepository(db *dynamodb.Client, cfg *config.Config) *user.Repository {
	return user.NewRepository(db, cfg.DynamoDB.UserTable)
}

func ProvideIdentity(c *cognitoidentityprovider.Client, cfg *config.Config, log *zap.Logger) *identity.Service {
	return identity.NewService(c, cfg.Cognito.UserPoolID, cfg.Cognito.UserPoolClientID, log)
}

func ProvideMailSender(c *sesv2.Client, cfg *config.Config, log *zap.Logger) mail.Sender {
	return mail.NewSESSender(c, cfg.Mail.From, cfg.IsProd(), log)
}

func ProvideDispatcher(repo *booking.Repository, sender mail.Sender, cfg *config.Config, log *zap.Logger) *reminder.Dispatcher {
	return reminder.NewDispatcher(repo, sender, cfg.Mail.ImageDir, cfg.Mail.CC, log)
}

// Module provided to fx
var Module = fx.Options(
	logger.Module,
	fx.Provide(config.NewConfig),
	fx.Provide(ProvideAWSConfig),
	fx.Provide(awsx.NewDynamoDB, awsx.NewCognito, awsx.NewSES),
	fx.Provide(
		ProvideBookingRepository,
		ProvideUserRepository,
		ProvideIdentity,
		ProvideMailSender,
		ProvideDispatcher,
	),
)
