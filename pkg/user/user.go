// Package user stores profile rows in the user table, keyed by (uuid, sk).
// The profile row itself uses EmptySK.
package user

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
)

const EmptySK = "#"

type Item struct {
	UUID      string `json:"uuid" dynamodbav:"uuid"`
	SK        string `json:"sk" dynamodbav:"sk"`
	Email     string `json:"email" dynamodbav:"email"`
	Name      string `json:"name" dynamodbav:"name"`
	Role      string `json:"role" dynamodbav:"role"`
	UpdatedAt string `json:"updated_at" dynamodbav:"updated_at"`
}

type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type Repository struct {
	db    DynamoAPI
	table string
}

func NewRepository(db DynamoAPI, table string) *Repository {
	return &Repository{db: db, table: table}
}

func (r *Repository) Get(ctx context.Context, uuid, sk string) (Item, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"uuid": &types.AttributeValueMemberS{Value: uuid},
			"sk":   &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return Item{}, fmt.Errorf("get user: %w", err)
	}
	if len(out.Item) == 0 {
		return Item{}, apperr.New(apperr.KindNotFound, "指定されたユーザーは存在しません。")
	}
	var it Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return Item{}, apperr.Wrap(apperr.KindDecodeError, "", err)
	}
	return it, nil
}

// Put replaces the row; an empty sk is stored as EmptySK.
func (r *Repository) Put(ctx context.Context, it Item) error {
	if it.SK == "" {
		it.SK = EmptySK
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if _, err := r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}
