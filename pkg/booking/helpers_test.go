package booking

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func putRaw(date, sk, terakoyaType string) *dynamodb.PutItemInput {
	return &dynamodb.PutItemInput{
		TableName: aws.String(testTable),
		Item: map[string]types.AttributeValue{
			"date":          &types.AttributeValueMemberS{Value: date},
			"sk":            &types.AttributeValueMemberS{Value: sk},
			"terakoya_type": &types.AttributeValueMemberS{Value: terakoyaType},
			"is_reminded":   &types.AttributeValueMemberS{Value: string(NotSent)},
		},
	}
}
