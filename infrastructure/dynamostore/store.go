// Package dynamostore implements the tracker store on a single DynamoDB
// table with partition key "id" and sort key "month".
package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"rtotrack.dev/rtotrack/core/models"
)

type Store struct {
	client *dynamodb.Client
	table  string
}

// New wraps an existing DynamoDB client.
func New(client *dynamodb.Client, table string) *Store {
	return &Store{client: client, table: table}
}

// Connect builds a store from the default AWS configuration.
func Connect(ctx context.Context, table string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(dynamodb.NewFromConfig(cfg), table), nil
}

func (s *Store) GetBase(ctx context.Context, id string) (*models.BaseRecord, error) {
	item, err := s.getItem(ctx, id, models.BaseMonth)
	if err != nil || item == nil {
		return nil, err
	}

	var record models.BaseRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal base record %s: %w", id, err)
	}
	return &record, nil
}

func (s *Store) PutBase(ctx context.Context, record *models.BaseRecord) error {
	return s.putItem(ctx, record)
}

func (s *Store) GetMonth(ctx context.Context, id, month string) (*models.MonthRecord, error) {
	item, err := s.getItem(ctx, id, month)
	if err != nil || item == nil {
		return nil, err
	}

	var record models.MonthRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal month record %s/%s: %w", id, month, err)
	}
	return &record, nil
}

func (s *Store) PutMonth(ctx context.Context, record *models.MonthRecord) error {
	return s.putItem(ctx, record)
}

// ScanBaseRecords walks the whole table and returns every profile row. Used
// by maintenance jobs, not by the request path.
func (s *Store) ScanBaseRecords(ctx context.Context) ([]models.BaseRecord, error) {
	var records []models.BaseRecord

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                aws.String(s.table),
		FilterExpression:         aws.String("#m = :base"),
		ExpressionAttributeNames: map[string]string{"#m": "month"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":base": &types.AttributeValueMemberS{Value: models.BaseMonth},
		},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", s.table, err)
		}

		var batch []models.BaseRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan page: %w", err)
		}
		records = append(records, batch...)
	}

	return records, nil
}

func (s *Store) getItem(ctx context.Context, id, month string) (map[string]types.AttributeValue, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id":    &types.AttributeValueMemberS{Value: id},
			"month": &types.AttributeValueMemberS{Value: month},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s/%s: %w", id, month, err)
	}
	if out.Item == nil {
		// Absence is a valid result, not an error.
		return nil, nil
	}
	return out.Item, nil
}

func (s *Store) putItem(ctx context.Context, record any) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}
