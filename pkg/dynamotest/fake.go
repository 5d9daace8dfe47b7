// Package dynamotest provides an in-memory stand-in for the DynamoDB item
// API. It understands the expressions produced by the expression builder
// for equality key conditions, equality filters, SET updates and AND-joined
// conditions of attribute_exists, = and <>.
package dynamotest

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	eqTerm     = regexp.MustCompile(`(#\w+)\s*(<>|=)\s*(:\w+)`)
	existsTerm = regexp.MustCompile(`attribute_exists\s*\(\s*(#\w+)\s*\)`)
)

type Item = map[string]types.AttributeValue

type table struct {
	pk, sk string
	rows   map[string]Item
}

// Fake implements PutItem, GetItem, UpdateItem and Query.
type Fake struct {
	// PageSize bounds items per Query page so pagination is exercised.
	PageSize int
	// Errs injects a failure per operation name ("PutItem", "Query", ...).
	Errs map[string]error

	mu     sync.Mutex
	tables map[string]*table
	calls  map[string]int
}

func New() *Fake {
	return &Fake{PageSize: 2, Errs: map[string]error{}, tables: map[string]*table{}, calls: map[string]int{}}
}

// CreateTable registers a table with its partition and sort key names.
func (f *Fake) CreateTable(name, pk, sk string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = &table{pk: pk, sk: sk, rows: map[string]Item{}}
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Row returns a stored row, or nil.
func (f *Fake) Row(tableName, pk, sk string) Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[tableName]
	if t == nil {
		return nil
	}
	return t.rows[pk+"\x00"+sk]
}

func (f *Fake) enter(op string, name *string) (*table, error) {
	f.calls[op]++
	if err := f.Errs[op]; err != nil {
		return nil, err
	}
	t := f.tables[aws.ToString(name)]
	if t == nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return t, nil
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return fmt.Sprint(av)
}

func (t *table) rowKey(item Item) string {
	return str(item[t.pk]) + "\x00" + str(item[t.sk])
}

func copyItem(in Item) Item {
	out := make(Item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (f *Fake) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.enter("PutItem", in.TableName)
	if err != nil {
		return nil, err
	}
	t.rows[t.rowKey(in.Item)] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *Fake) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.enter("GetItem", in.TableName)
	if err != nil {
		return nil, err
	}
	row, ok := t.rows[t.rowKey(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(row)}, nil
}

func (f *Fake) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.enter("UpdateItem", in.TableName)
	if err != nil {
		return nil, err
	}

	rk := t.rowKey(in.Key)
	row, exists := t.rows[rk]
	if in.ConditionExpression != nil {
		if !holds(aws.ToString(in.ConditionExpression), row, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			ex := &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
			if exists && in.ReturnValuesOnConditionCheckFailure == types.ReturnValuesOnConditionCheckFailureAllOld {
				ex.Item = copyItem(row)
			}
			return nil, ex
		}
	}
	if !exists {
		row = copyItem(in.Key)
	} else {
		row = copyItem(row)
	}

	upd := aws.ToString(in.UpdateExpression)
	if i := strings.Index(strings.ToUpper(upd), "SET"); i >= 0 {
		upd = upd[i+3:]
	}
	for _, m := range eqTerm.FindAllStringSubmatch(upd, -1) {
		row[in.ExpressionAttributeNames[m[1]]] = in.ExpressionAttributeValues[m[3]]
	}
	t.rows[rk] = row
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *Fake) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.enter("Query", in.TableName)
	if err != nil {
		return nil, err
	}

	var partition string
	for _, m := range eqTerm.FindAllStringSubmatch(aws.ToString(in.KeyConditionExpression), -1) {
		if in.ExpressionAttributeNames[m[1]] == t.pk {
			partition = str(in.ExpressionAttributeValues[m[3]])
		}
	}

	var matched []Item
	for _, row := range t.rows {
		if str(row[t.pk]) == partition {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return str(matched[i][t.sk]) < str(matched[j][t.sk]) })

	start := 0
	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey[t.sk])
		for start < len(matched) && str(matched[start][t.sk]) <= after {
			start++
		}
	}
	end := len(matched)
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
	}

	out := &dynamodb.QueryOutput{}
	filter := aws.ToString(in.FilterExpression)
	for _, row := range matched[start:end] {
		if filter == "" || holds(filter, row, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			out.Items = append(out.Items, copyItem(row))
		}
	}
	out.Count = int32(len(out.Items))
	if end < len(matched) {
		last := matched[end-1]
		out.LastEvaluatedKey = Item{t.pk: last[t.pk], t.sk: last[t.sk]}
	}
	return out, nil
}

// holds evaluates an AND-joined condition against row (nil when absent).
// A comparison against a missing attribute is false, as in DynamoDB.
func holds(cond string, row Item, names map[string]string, values map[string]types.AttributeValue) bool {
	for _, m := range existsTerm.FindAllStringSubmatch(cond, -1) {
		if _, ok := row[names[m[1]]]; !ok {
			return false
		}
	}
	for _, m := range eqTerm.FindAllStringSubmatch(cond, -1) {
		got, ok := row[names[m[1]]]
		if !ok {
			return false
		}
		same := str(got) == str(values[m[3]])
		if (m[2] == "=") != same {
			return false
		}
	}
	return true
}
