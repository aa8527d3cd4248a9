package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/exceptions"
)

type EncryptMode func(cipher.Block) (cipher.AEAD, error)

// EncryptionTokenMarshaler seals continuation keys with AES so table key
// attributes never leak to clients in plain text.
type EncryptionTokenMarshaler struct {
	Mode EncryptMode
}

func NewGCM() *EncryptionTokenMarshaler {
	return &EncryptionTokenMarshaler{
		Mode: cipher.NewGCM,
	}
}

type sealedToken struct {
	Ciphertext string `json:"c"`
	Nonce      string `json:"n"`
}

func flattenLastKey(lastKey map[string]types.AttributeValue) ([]byte, error) {
	if len(lastKey) == 0 {
		return nil, nil
	}
	flat := make(data.NextToken, len(lastKey))
	for name, value := range lastKey {
		entry := make(map[string]string, 1)
		switch av := value.(type) {
		case *types.AttributeValueMemberS:
			entry["S"] = av.Value
		case *types.AttributeValueMemberN:
			entry["N"] = av.Value
		case *types.AttributeValueMemberB:
			entry["B"] = string(av.Value)
		}
		flat[name] = entry
	}
	return json.Marshal(flat)
}

func expandLastKey(serialized []byte) (map[string]types.AttributeValue, error) {
	if len(serialized) == 0 {
		return nil, nil
	}
	var flat data.NextToken
	if err := json.Unmarshal(serialized, &flat); err != nil {
		return nil, err
	}
	lastKey := make(map[string]types.AttributeValue, len(flat))
	for name, entry := range flat {
		if s, ok := entry["S"]; ok {
			lastKey[name] = &types.AttributeValueMemberS{Value: s}
		}
		if n, ok := entry["N"]; ok {
			lastKey[name] = &types.AttributeValueMemberN{Value: n}
		}
		if b, ok := entry["B"]; ok {
			lastKey[name] = &types.AttributeValueMemberB{Value: []byte(b)}
		}
	}
	return lastKey, nil
}

func (em *EncryptionTokenMarshaler) aead(scope string) (cipher.AEAD, error) {
	digest := sha256.Sum256([]byte(scope))
	block, err := aes.NewCipher(digest[:])
	if err != nil {
		return nil, err
	}
	return em.Mode(block)
}

func (em *EncryptionTokenMarshaler) Marshal(scope string, lastKey map[string]types.AttributeValue) ([]byte, error) {
	serialized, err := flattenLastKey(lastKey)
	if err != nil || serialized == nil {
		return nil, err
	}
	sealer, err := em.aead(scope)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, sealer.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(sealedToken{
		Ciphertext: hex.EncodeToString(sealer.Seal(nil, nonce, serialized, nil)),
		Nonce:      hex.EncodeToString(nonce),
	})
	if err != nil {
		return nil, err
	}
	return []byte(base64.URLEncoding.EncodeToString(payload)), nil
}

func (em *EncryptionTokenMarshaler) Unmarshal(scope string, nextToken []byte) (map[string]types.AttributeValue, error) {
	if len(nextToken) == 0 {
		return nil, nil
	}
	payload, err := base64.URLEncoding.DecodeString(string(nextToken))
	if err != nil {
		return nil, exceptions.InvalidInput("Pagination token is not decodable.")
	}
	var sealed sealedToken
	if err := json.Unmarshal(payload, &sealed); err != nil {
		return nil, exceptions.InvalidInput("Pagination token is not decodable.")
	}
	opener, err := em.aead(scope)
	if err != nil {
		return nil, err
	}
	ciphertext, err := hex.DecodeString(sealed.Ciphertext)
	if err != nil {
		return nil, exceptions.InvalidInput("Pagination token is not decodable.")
	}
	nonce, err := hex.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, exceptions.InvalidInput("Pagination token is not decodable.")
	}
	serialized, err := opener.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, exceptions.InvalidInput("Pagination token was not issued for this caller.")
	}
	return expandLastKey(serialized)
}
