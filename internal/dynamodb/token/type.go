package token

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// TokenMarshaler converts DynamoDB continuation keys to opaque page tokens
// and back. The scope string binds a token to the caller that received it:
// a token minted for one scope fails to unmarshal under another.
type TokenMarshaler interface {
	Marshal(scope string, lastKey map[string]types.AttributeValue) ([]byte, error)

	Unmarshal(scope string, nextToken []byte) (map[string]types.AttributeValue, error)
}
