package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/joeydtaylor/terakoya-core/pkg/apperr"
)

// DynamoAPI is the subset of *dynamodb.Client the repository uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DateLayout is the ISO-8601 calendar date used as the partition key.
const DateLayout = "2006-01-02"

var jst = time.FixedZone("JST", 9*60*60)

type Repository struct {
	db    DynamoAPI
	table string
	now   func() time.Time
}

func NewRepository(db DynamoAPI, table string) *Repository {
	return &Repository{db: db, table: table, now: time.Now}
}

// Today is the current date in Japan Standard Time.
func (r *Repository) Today() string {
	return r.now().In(jst).Format(DateLayout)
}

// Now is the current JST timestamp used for created_at.
func (r *Repository) Now() time.Time {
	return r.now().In(jst)
}

func key(date, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"date": &types.AttributeValueMemberS{Value: date},
		"sk":   &types.AttributeValueMemberS{Value: sk},
	}
}

// Insert writes item unconditionally, replacing any row with the same key.
func (r *Repository) Insert(ctx context.Context, item Item) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put booking: %w", err)
	}
	return nil
}

// Get loads one booking; a missing row is KindNotFound.
func (r *Repository) Get(ctx context.Context, date, email string, t TerakoyaType) (Item, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       key(date, GenerateSK(email, t)),
	})
	if err != nil {
		return Item{}, fmt.Errorf("get booking: %w", err)
	}
	if len(out.Item) == 0 {
		return Item{}, apperr.New(apperr.KindNotFound, "予約が見つかりません。")
	}
	var item Item
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return Item{}, apperr.Wrap(apperr.KindDecodeError, "", err)
	}
	return item, nil
}

// UpdateReminded flips today's booking to SENT. The write is conditional on
// the row existing and not already being SENT, so of any concurrent callers
// exactly one succeeds; the rest get KindAlreadyReminded.
func (r *Repository) UpdateReminded(ctx context.Context, sk string) error {
	cond := expression.AttributeExists(expression.Name("sk")).
		And(expression.Name("is_reminded").NotEqual(expression.Value(string(Sent))))
	upd := expression.Set(expression.Name("is_reminded"), expression.Value(string(Sent)))

	expr, err := expression.NewBuilder().WithCondition(cond).WithUpdate(upd).Build()
	if err != nil {
		return fmt.Errorf("build reminded update: %w", err)
	}

	_, err = r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.table),
		Key:                                 key(r.Today(), sk),
		ConditionExpression:                 expr.Condition(),
		UpdateExpression:                    expr.Update(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if len(ccf.Item) == 0 {
				return apperr.Wrap(apperr.KindNotFound, "予約が見つかりません。", err)
			}
			return apperr.Wrap(apperr.KindAlreadyReminded, "リマインドメールは送信済みです。", err)
		}
		return fmt.Errorf("update reminded: %w", err)
	}
	return nil
}

// UpdatePlace sets the venue of one booking unconditionally.
func (r *Repository) UpdatePlace(ctx context.Context, date, sk string, place Place) error {
	upd := expression.Set(expression.Name("place"), expression.Value(string(place)))
	expr, err := expression.NewBuilder().WithUpdate(upd).Build()
	if err != nil {
		return fmt.Errorf("build place update: %w", err)
	}
	_, err = r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(date, sk),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("update place: %w", err)
	}
	return nil
}

// ListByDate returns every booking of one date partition.
func (r *Repository) ListByDate(ctx context.Context, date string) ([]Item, error) {
	keyCond := expression.Key("date").Equal(expression.Value(date))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// ListPendingReminders returns today's bookings still NOT_SENT.
func (r *Repository) ListPendingReminders(ctx context.Context) ([]Item, error) {
	keyCond := expression.Key("date").Equal(expression.Value(r.Today()))
	filt := expression.Name("is_reminded").Equal(expression.Value(string(NotSent)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, fmt.Errorf("build reminder query: %w", err)
	}
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

func (r *Repository) query(ctx context.Context, in *dynamodb.QueryInput) ([]Item, error) {
	var items []Item
	p := dynamodb.NewQueryPaginator(r.db, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query bookings: %w", err)
		}
		var batch []Item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, apperr.Wrap(apperr.KindDecodeError, "", err)
		}
		items = append(items, batch...)
	}
	return items, nil
}
