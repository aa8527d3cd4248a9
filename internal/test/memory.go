// Package test carries the storage harnesses shared by the repository tests:
// an in-memory stand-in for the DynamoDB client and an optional local table
// bootstrap for integration runs.
package test

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/exp/maps"
	"worthwatch.me/watchlists/internal/dynamodb/services"
)

// indexSchema mirrors the table's secondary indexes: hash attribute plus an
// optional range attribute.
type indexSchema struct {
	HashAttr  string
	RangeAttr string
}

// MemoryDynamoDB is a single-table in-memory double for the narrow client
// surface the repositories use. It understands the expression shapes the
// repositories actually build: existence conditions, SET/ADD updates,
// equality and begins_with key conditions, equality filters.
type MemoryDynamoDB struct {
	mutex   sync.Mutex
	items   map[string]map[string]types.AttributeValue
	indexes map[string]indexSchema
}

func NewMemoryDynamoDB() *MemoryDynamoDB {
	return &MemoryDynamoDB{
		items: make(map[string]map[string]types.AttributeValue),
		indexes: map[string]indexSchema{
			services.EmailIndex:      {HashAttr: services.EmailIndexAttr},
			services.OwnerIndex:      {HashAttr: services.OwnerIndexAttr, RangeAttr: "createdAt"},
			services.VisibilityIndex: {HashAttr: services.VisibilityIndexAttr, RangeAttr: "createdAt"},
			services.TypeIndex:       {HashAttr: services.TypeIndexAttr, RangeAttr: "createdAt"},
		},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, bool) {
	if member, ok := item[name].(*types.AttributeValueMemberS); ok {
		return member.Value, true
	}
	return "", false
}

func storageKey(item map[string]types.AttributeValue) (string, error) {
	pk, okPK := stringAttr(item, "PK")
	sk, okSK := stringAttr(item, "SK")
	if !okPK || !okSK {
		return "", fmt.Errorf("item is missing its composite key")
	}
	return pk + "\x00" + sk, nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	copied := make(map[string]types.AttributeValue, len(item))
	for name, value := range item {
		copied[name] = value
	}
	return copied
}

func sameValue(a types.AttributeValue, b types.AttributeValue) bool {
	switch left := a.(type) {
	case *types.AttributeValueMemberS:
		right, ok := b.(*types.AttributeValueMemberS)
		return ok && left.Value == right.Value
	case *types.AttributeValueMemberN:
		right, ok := b.(*types.AttributeValueMemberN)
		return ok && left.Value == right.Value
	case *types.AttributeValueMemberBOOL:
		right, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && left.Value == right.Value
	case *types.AttributeValueMemberNULL:
		_, ok := b.(*types.AttributeValueMemberNULL)
		return ok
	}
	return false
}

func substituteNames(expr string, names map[string]string) string {
	placeholders := make([]string, 0, len(names))
	for placeholder := range names {
		placeholders = append(placeholders, placeholder)
	}
	// Longest first so #1 never clobbers the prefix of #10.
	sort.Slice(placeholders, func(i, j int) bool {
		return len(placeholders[i]) > len(placeholders[j])
	})
	for _, placeholder := range placeholders {
		expr = strings.ReplaceAll(expr, placeholder, names[placeholder])
	}
	return expr
}

var (
	notExistsPattern  = regexp.MustCompile(`attribute_not_exists\s*\(\s*([^)]+?)\s*\)`)
	existsPattern     = regexp.MustCompile(`(?:^|[^_])attribute_exists\s*\(\s*([^)]+?)\s*\)`)
	beginsWithPattern = regexp.MustCompile(`begins_with\s*\(\s*([^,]+?)\s*,\s*(:[\w]+)\s*\)`)
	equalityPattern   = regexp.MustCompile(`([\w.#-]+)\s*=\s*(:[\w]+)`)
)

// checkCondition evaluates the conjunction of existence checks the
// repositories attach to conditional writes.
func checkCondition(condition *string, names map[string]string, item map[string]types.AttributeValue) error {
	if condition == nil {
		return nil
	}
	expr := substituteNames(*condition, names)
	for _, match := range notExistsPattern.FindAllStringSubmatch(expr, -1) {
		if item != nil {
			if _, present := item[match[1]]; present {
				return &types.ConditionalCheckFailedException{}
			}
		}
	}
	for _, match := range existsPattern.FindAllStringSubmatch(expr, -1) {
		if item == nil {
			return &types.ConditionalCheckFailedException{}
		}
		if _, present := item[match[1]]; !present {
			return &types.ConditionalCheckFailedException{}
		}
	}
	return nil
}

func (m *MemoryDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key, err := storageKey(params.Key)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: copyItem(m.items[key])}, nil
}

func (m *MemoryDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key, err := storageKey(params.Item)
	if err != nil {
		return nil, err
	}
	if err := checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, m.items[key]); err != nil {
		return nil, err
	}
	m.items[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *MemoryDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key, err := storageKey(params.Key)
	if err != nil {
		return nil, err
	}
	existing := m.items[key]
	if err := checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, existing); err != nil {
		return nil, err
	}
	updated := copyItem(existing)
	if updated == nil {
		updated = copyItem(params.Key)
	}
	if params.UpdateExpression != nil {
		if err := applyUpdate(updated, *params.UpdateExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
			return nil, err
		}
	}
	m.items[key] = updated
	output := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		output.Attributes = copyItem(updated)
	}
	return output, nil
}

// applyUpdate interprets the SET and ADD sections an update expression can
// carry, in the exact shape the expression builder renders them.
func applyUpdate(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	expr = substituteNames(expr, names)
	for _, section := range splitSections(expr) {
		verb, body, found := strings.Cut(section, " ")
		if !found {
			continue
		}
		switch verb {
		case "SET":
			for _, clause := range strings.Split(body, ",") {
				name, placeholder, ok := strings.Cut(clause, "=")
				if !ok {
					return fmt.Errorf("unsupported SET clause %q", clause)
				}
				value, present := values[strings.TrimSpace(placeholder)]
				if !present {
					return fmt.Errorf("no value bound for %q", placeholder)
				}
				item[strings.TrimSpace(name)] = value
			}
		case "ADD":
			for _, clause := range strings.Split(body, ",") {
				fields := strings.Fields(clause)
				if len(fields) != 2 {
					return fmt.Errorf("unsupported ADD clause %q", clause)
				}
				delta, present := values[fields[1]]
				if !present {
					return fmt.Errorf("no value bound for %q", fields[1])
				}
				added, err := addNumbers(item[fields[0]], delta)
				if err != nil {
					return err
				}
				item[fields[0]] = added
			}
		default:
			return fmt.Errorf("unsupported update verb %q", verb)
		}
	}
	return nil
}

// splitSections slices an update expression at its verb keywords.
func splitSections(expr string) []string {
	var sections []string
	verbs := regexp.MustCompile(`\b(SET|ADD|REMOVE|DELETE)\b`)
	bounds := verbs.FindAllStringIndex(expr, -1)
	for i, bound := range bounds {
		end := len(expr)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		sections = append(sections, strings.TrimSpace(expr[bound[0]:end]))
	}
	return sections
}

func addNumbers(current types.AttributeValue, delta types.AttributeValue) (types.AttributeValue, error) {
	deltaN, ok := delta.(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("ADD delta is not numeric")
	}
	deltaValue, err := strconv.Atoi(deltaN.Value)
	if err != nil {
		return nil, err
	}
	base := 0
	if currentN, ok := current.(*types.AttributeValueMemberN); ok {
		if base, err = strconv.Atoi(currentN.Value); err != nil {
			return nil, err
		}
	}
	return &types.AttributeValueMemberN{Value: strconv.Itoa(base + deltaValue)}, nil
}

func (m *MemoryDynamoDB) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key, err := storageKey(params.Key)
	if err != nil {
		return nil, err
	}
	existing := m.items[key]
	if err := checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, existing); err != nil {
		return nil, err
	}
	delete(m.items, key)
	output := &dynamodb.DeleteItemOutput{}
	if params.ReturnValues == types.ReturnValueAllOld {
		output.Attributes = copyItem(existing)
	}
	return output, nil
}

// matcher is one parsed predicate from a key condition or filter.
type matcher struct {
	Attr       string
	Value      types.AttributeValue
	BeginsWith bool
}

func (mt matcher) matches(item map[string]types.AttributeValue) bool {
	value, present := item[mt.Attr]
	if !present {
		return false
	}
	if mt.BeginsWith {
		actual, okActual := value.(*types.AttributeValueMemberS)
		prefix, okPrefix := mt.Value.(*types.AttributeValueMemberS)
		return okActual && okPrefix && strings.HasPrefix(actual.Value, prefix.Value)
	}
	return sameValue(value, mt.Value)
}

func parseMatchers(expr *string, names map[string]string, values map[string]types.AttributeValue) ([]matcher, error) {
	if expr == nil {
		return nil, nil
	}
	substituted := substituteNames(*expr, names)
	var matchers []matcher
	consumed := make(map[string]bool)
	for _, match := range beginsWithPattern.FindAllStringSubmatch(substituted, -1) {
		value, present := values[match[2]]
		if !present {
			return nil, fmt.Errorf("no value bound for %q", match[2])
		}
		matchers = append(matchers, matcher{Attr: strings.TrimSpace(match[1]), Value: value, BeginsWith: true})
		consumed[match[2]] = true
	}
	for _, match := range equalityPattern.FindAllStringSubmatch(substituted, -1) {
		if consumed[match[2]] {
			continue
		}
		value, present := values[match[2]]
		if !present {
			return nil, fmt.Errorf("no value bound for %q", match[2])
		}
		matchers = append(matchers, matcher{Attr: strings.TrimSpace(match[1]), Value: value})
	}
	return matchers, nil
}

func allMatch(item map[string]types.AttributeValue, matchers []matcher) bool {
	for _, mt := range matchers {
		if !mt.matches(item) {
			return false
		}
	}
	return true
}

func (m *MemoryDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	keyMatchers, err := parseMatchers(params.KeyConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	filterMatchers, err := parseMatchers(params.FilterExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	sortAttr := "SK"
	if params.IndexName != nil {
		schema, known := m.indexes[*params.IndexName]
		if !known {
			return nil, fmt.Errorf("unknown index %q", *params.IndexName)
		}
		sortAttr = schema.RangeAttr
	}
	var candidates []map[string]types.AttributeValue
	for _, item := range m.items {
		if allMatch(item, keyMatchers) {
			candidates = append(candidates, item)
		}
	}
	forward := params.ScanIndexForward == nil || *params.ScanIndexForward
	if sortAttr != "" {
		sort.SliceStable(candidates, func(i, j int) bool {
			left, _ := stringAttr(candidates[i], sortAttr)
			right, _ := stringAttr(candidates[j], sortAttr)
			if forward {
				return left < right
			}
			return left > right
		})
	}
	page, lastKey := paginate(candidates, params.ExclusiveStartKey, params.Limit)
	var results []map[string]types.AttributeValue
	for _, item := range page {
		if allMatch(item, filterMatchers) {
			results = append(results, copyItem(item))
		}
	}
	return &dynamodb.QueryOutput{
		Items:            results,
		LastEvaluatedKey: lastKey,
	}, nil
}

func (m *MemoryDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	filterMatchers, err := parseMatchers(params.FilterExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	keys := maps.Keys(m.items)
	sort.Strings(keys)
	candidates := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, key := range keys {
		candidates = append(candidates, m.items[key])
	}
	page, lastKey := paginate(candidates, params.ExclusiveStartKey, params.Limit)
	var results []map[string]types.AttributeValue
	for _, item := range page {
		if allMatch(item, filterMatchers) {
			results = append(results, copyItem(item))
		}
	}
	return &dynamodb.ScanOutput{
		Items:            results,
		LastEvaluatedKey: lastKey,
	}, nil
}

// paginate applies ExclusiveStartKey and Limit against an ordered candidate
// set, reporting the next start key when more items remain.
func paginate(candidates []map[string]types.AttributeValue, startKey map[string]types.AttributeValue, limit *int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	start := 0
	if startKey != nil {
		wantPK, _ := stringAttr(startKey, "PK")
		wantSK, _ := stringAttr(startKey, "SK")
		for i, item := range candidates {
			pk, _ := stringAttr(item, "PK")
			sk, _ := stringAttr(item, "SK")
			if pk == wantPK && sk == wantSK {
				start = i + 1
				break
			}
		}
	}
	end := len(candidates)
	if limit != nil && start+int(*limit) < end {
		end = start + int(*limit)
	}
	page := candidates[start:end]
	var lastKey map[string]types.AttributeValue
	if end < len(candidates) && len(page) > 0 {
		last := page[len(page)-1]
		pk, _ := stringAttr(last, "PK")
		sk, _ := stringAttr(last, "SK")
		lastKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		}
	}
	return page, lastKey
}

var _ services.DynamoDBApi = (*MemoryDynamoDB)(nil)
