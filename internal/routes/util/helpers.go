package util

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/exceptions"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeBody unmarshals the request body into T and applies its validate
// tags. Schema failures come back as field-level validation errors.
func DecodeBody[T interface{}](event events.APIGatewayV2HTTPRequest) (T, error) {
	var input T
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return input, exceptions.InvalidInput(fmt.Sprintf("Request body is not valid JSON: %s", err))
	}
	if err := validate.Struct(input); err != nil {
		if invalid, ok := err.(validator.ValidationErrors); ok {
			fields := make(map[string]string, len(invalid))
			for _, fieldError := range invalid {
				fields[fieldError.Field()] = fieldError.Tag()
			}
			return input, exceptions.InvalidFields("Request body failed validation", fields)
		}
		return input, exceptions.InvalidInput(err.Error())
	}
	return input, nil
}

// QueryParams reads limit and nextToken from the query string.
func QueryParams(event events.APIGatewayV2HTTPRequest) (data.QueryParams, error) {
	params := data.QueryParams{}
	if sLimit, ok := event.QueryStringParameters["limit"]; ok {
		limit, err := strconv.Atoi(sLimit)
		if err != nil {
			return params, exceptions.InvalidInput("Limit parameter was not a number type.")
		}
		params.Limit = limit
	}
	if token, ok := event.QueryStringParameters["nextToken"]; ok {
		params.NextToken = []byte(token)
	}
	return params, nil
}

func SerializeResponse[T interface{}, R interface{}](delayed func(T) R, thing T, err error, statusCode int) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	body, err := json.Marshal(delayed(thing))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Content-Length": strconv.Itoa(len(body)),
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func SerializeResponseOK[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 200)
}

func SerializeResponseCreated[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 201)
}

func SerializeResponseNoContent(err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 204,
	}, nil
}

func IdentityThunk[T interface{}](thing T) T {
	return thing
}

func MapOnList[T interface{}, R interface{}](things *[]T, thunk func(T) R) *[]R {
	if things == nil {
		return nil
	}
	converted := make([]R, len(*things))
	for i, thing := range *things {
		converted[i] = thunk(thing)
	}
	return &converted
}

func ConvertQueryResults[D interface{}, R interface{}](items data.QueryResults[D], thunk func(D) R) data.QueryResults[R] {
	if items.Items != nil {
		newItems := make([]R, len(items.Items))
		for i, rd := range items.Items {
			newItems[i] = thunk(rd)
		}
		return data.QueryResults[R]{
			Items:     newItems,
			NextToken: items.NextToken,
		}
	}
	return data.QueryResults[R]{
		Items: make([]R, 0),
	}
}

func ConvertQueryResultsPartial[D interface{}, R interface{}](thunk func(D) R) func(data.QueryResults[D]) data.QueryResults[R] {
	return func(d data.QueryResults[D]) data.QueryResults[R] {
		return ConvertQueryResults(d, thunk)
	}
}
