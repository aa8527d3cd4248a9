package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
)

// DynamoDBApi is the slice of the DynamoDB client the repository needs.
// Narrowed to an interface so tests can stand in an in-memory table.
type DynamoDBApi interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DefaultCallTimeout bounds every store round-trip.
const DefaultCallTimeout = 5 * time.Second

// Address pairs a row's composite key with the logical id used in error
// messages, so PK/SK formats never leak through the error taxonomy.
type Address struct {
	Id string
	PK string
	SK string
}

// Query describes one index read. Filter refines results after the key
// condition narrows the candidate set; it is never the primary selector.
type Query struct {
	IndexName    string
	Scope        string
	KeyCondition expression.KeyConditionBuilder
	Filter       *expression.ConditionBuilder
	ScanForward  bool
}

// TableDynamoDBService is the generic CRUD engine shared by every entity
// repository. T is the stored DTO, I the partial input. The hook functions
// carry the per-entity shape: Shim builds an addressable zero value, OnCreate
// materializes a new row, OnUpdate translates supplied input fields into
// update-expression sets.
type TableDynamoDBService[T interface{}, I interface{}] struct {
	DynamoDB       DynamoDBApi
	TableName      string
	TokenMarshaler token.TokenMarshaler
	Name           string
	CallTimeout    time.Duration
	Shim           func(pk string, sk string) T
	OnCreate       func(input I, now string, pk string, sk string) T
	OnUpdate       func(input I, update expression.UpdateBuilder)
}

func (ts *TableDynamoDBService[T, I]) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := ts.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (ts *TableDynamoDBService[T, I]) resource() string {
	return strings.ToLower(ts.Name)
}

// storeError classifies transport and deadline failures as StoreUnavailable
// so callers can apply retry policy; anything else passes through.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return exceptions.StoreUnavailable(err)
	}
	return err
}

func marshalKey(pk string, sk string) (map[string]types.AttributeValue, error) {
	pkAttr, err := attributevalue.Marshal(pk)
	if err != nil {
		return nil, err
	}
	skAttr, err := attributevalue.Marshal(sk)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"PK": pkAttr, "SK": skAttr}, nil
}

func (ts *TableDynamoDBService[T, I]) Get(ctx context.Context, addr Address) (T, error) {
	shim := ts.Shim(addr.PK, addr.SK)
	key, err := marshalKey(addr.PK, addr.SK)
	if err != nil {
		return shim, err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	response, err := ts.DynamoDB.GetItem(callCtx, &dynamodb.GetItemInput{
		TableName: aws.String(ts.TableName),
		Key:       key,
	})
	if err != nil {
		return shim, storeError(err)
	}
	if response.Item == nil {
		return shim, exceptions.NotFound(ts.resource(), addr.Id)
	}
	err = attributevalue.UnmarshalMap(response.Item, &shim)
	return shim, err
}

// Put is the unconditional upsert: whatever occupies the address is
// overwritten. Callers needing create-if-absent semantics use Create.
func (ts *TableDynamoDBService[T, I]) Put(ctx context.Context, item T) (T, error) {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return item, err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	_, err = ts.DynamoDB.PutItem(callCtx, &dynamodb.PutItemInput{
		TableName: aws.String(ts.TableName),
		Item:      marshaled,
	})
	return item, storeError(err)
}

// Create writes a new row only when the address is unoccupied, so a colliding
// id surfaces as AlreadyExists instead of silently overwriting data.
func (ts *TableDynamoDBService[T, I]) Create(ctx context.Context, addr Address, input I) (T, error) {
	now := data.Timestamp(time.Now())
	shim := ts.OnCreate(input, now, addr.PK, addr.SK)
	item, err := attributevalue.MarshalMap(shim)
	if err != nil {
		return shim, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())).
		Build()
	if err != nil {
		return shim, err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	_, err = ts.DynamoDB.PutItem(callCtx, &dynamodb.PutItemInput{
		TableName:                 aws.String(ts.TableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return shim, exceptions.Conflict(ts.resource(), addr.Id)
		}
		return shim, storeError(err)
	}
	return shim, nil
}

// Update rewrites only the attributes the input supplies, plus updatedAt.
// The attribute_exists condition keeps update from ever creating a row.
func (ts *TableDynamoDBService[T, I]) Update(ctx context.Context, addr Address, input I) (T, error) {
	shim := ts.Shim(addr.PK, addr.SK)
	key, err := marshalKey(addr.PK, addr.SK)
	if err != nil {
		return shim, err
	}
	update := expression.Set(expression.Name("updatedAt"), expression.Value(data.Timestamp(time.Now())))
	ts.OnUpdate(input, update)
	condition := expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())
	expr, err := expression.NewBuilder().WithCondition(condition).WithUpdate(update).Build()
	if err != nil {
		return shim, err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	response, err := ts.DynamoDB.UpdateItem(callCtx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(ts.TableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return shim, exceptions.NotFound(ts.resource(), addr.Id)
		}
		return shim, storeError(err)
	}
	err = attributevalue.UnmarshalMap(response.Attributes, &shim)
	return shim, err
}

// Delete is idempotent: removing an absent row is not an error.
func (ts *TableDynamoDBService[T, I]) Delete(ctx context.Context, addr Address) error {
	key, err := marshalKey(addr.PK, addr.SK)
	if err != nil {
		return err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	_, err = ts.DynamoDB.DeleteItem(callCtx, &dynamodb.DeleteItemInput{
		TableName: aws.String(ts.TableName),
		Key:       key,
	})
	return storeError(err)
}

// DeleteReturning reports whether a row actually existed at the address, for
// callers that pair deletion with counter maintenance.
func (ts *TableDynamoDBService[T, I]) DeleteReturning(ctx context.Context, addr Address) (T, bool, error) {
	shim := ts.Shim(addr.PK, addr.SK)
	key, err := marshalKey(addr.PK, addr.SK)
	if err != nil {
		return shim, false, err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	response, err := ts.DynamoDB.DeleteItem(callCtx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(ts.TableName),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return shim, false, storeError(err)
	}
	if len(response.Attributes) == 0 {
		return shim, false, nil
	}
	err = attributevalue.UnmarshalMap(response.Attributes, &shim)
	return shim, true, err
}

// AddToCounter applies an atomic numeric add. Concurrent deltas all land;
// there is no read-modify-write to race. The existence condition keeps a
// counter from materializing on an address with no row.
func (ts *TableDynamoDBService[T, I]) AddToCounter(ctx context.Context, addr Address, attribute string, delta int) error {
	key, err := marshalKey(addr.PK, addr.SK)
	if err != nil {
		return err
	}
	update := expression.Add(expression.Name(attribute), expression.Value(delta))
	condition := expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())
	expr, err := expression.NewBuilder().WithCondition(condition).WithUpdate(update).Build()
	if err != nil {
		return err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	_, err = ts.DynamoDB.UpdateItem(callCtx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(ts.TableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return exceptions.NotFound(ts.resource(), addr.Id)
		}
		return storeError(err)
	}
	return nil
}

func (ts *TableDynamoDBService[T, I]) Query(ctx context.Context, query Query, params data.QueryParams) (data.QueryResults[T], error) {
	builder := expression.NewBuilder().WithKeyCondition(query.KeyCondition)
	if query.Filter != nil {
		builder = builder.WithFilter(*query.Filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	startKey, err := ts.TokenMarshaler.Unmarshal(query.Scope, params.NextToken)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	var indexName *string
	if query.IndexName != "" {
		indexName = aws.String(query.IndexName)
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	output, err := ts.DynamoDB.Query(callCtx, &dynamodb.QueryInput{
		TableName:                 aws.String(ts.TableName),
		IndexName:                 indexName,
		Limit:                     params.GetLimit(),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
		ScanIndexForward:          aws.Bool(query.ScanForward),
	})
	if err != nil {
		return data.QueryResults[T]{}, storeError(err)
	}
	var items []T
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return data.QueryResults[T]{}, err
	}
	nextToken, err := ts.TokenMarshaler.Marshal(query.Scope, output.LastEvaluatedKey)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	return data.QueryResults[T]{
		Items:     items,
		NextToken: nextToken,
	}, nil
}

// ScanFilter is the full-table fallback for patterns no index covers. Correct
// but not horizontally scalable; callers that reach for it are flagged as
// design debt.
func (ts *TableDynamoDBService[T, I]) ScanFilter(ctx context.Context, scope string, filter expression.ConditionBuilder, params data.QueryParams) (data.QueryResults[T], error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	startKey, err := ts.TokenMarshaler.Unmarshal(scope, params.NextToken)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	callCtx, cancel := ts.callContext(ctx)
	defer cancel()
	output, err := ts.DynamoDB.Scan(callCtx, &dynamodb.ScanInput{
		TableName:                 aws.String(ts.TableName),
		Limit:                     params.GetLimit(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return data.QueryResults[T]{}, storeError(err)
	}
	var items []T
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return data.QueryResults[T]{}, err
	}
	nextToken, err := ts.TokenMarshaler.Marshal(scope, output.LastEvaluatedKey)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	return data.QueryResults[T]{
		Items:     items,
		NextToken: nextToken,
	}, nil
}
