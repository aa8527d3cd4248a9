package filters

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/auth"
	"worthwatch.me/watchlists/internal/exceptions"
)

type FilterContext struct {
	Request  *events.APIGatewayV2HTTPRequest
	Response *events.APIGatewayV2HTTPResponse
	Context  *context.Context
}

type RequestFilter interface {
	Filter(ctx *FilterContext) (*FilterContext, bool)
}

type CorsFilter struct {
	Methods []string
	Origins []string
	Headers []string
}

func (cf *CorsFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if ctx.Request.RequestContext.HTTP.Method == "OPTIONS" {
		headers := ctx.Response.Headers
		if headers == nil {
			headers = make(map[string]string, 4)
		}
		headers["content-length"] = "0"
		headers["access-control-allow-headers"] = strings.Join(cf.Headers, ", ")
		headers["access-control-allow-methods"] = strings.Join(cf.Methods, ", ")
		headers["access-control-allow-origin"] = strings.Join(cf.Origins, ", ")
		return &FilterContext{
			Request: ctx.Request,
			Context: ctx.Context,
			Response: &events.APIGatewayV2HTTPResponse{
				Headers:    headers,
				StatusCode: ctx.Response.StatusCode,
			},
		}, true
	}
	return ctx, false
}

// TokenVerifier is the slice of the auth layer the filter needs.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (auth.Identity, error)
}

// BearerTokenFilter gates protected routes on a verified bearer token. The
// verified identity lands in the request context; routes on the public set
// proceed anonymously.
type BearerTokenFilter struct {
	Logger   zerolog.Logger
	Verifier TokenVerifier
	Public   *auth.RouteSet
}

func (bf *BearerTokenFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	method := ctx.Request.RequestContext.HTTP.Method
	if method == "OPTIONS" || bf.Public.IsPublic(method, ctx.Request.RawPath) {
		return ctx, false
	}
	identity, err := bf.authenticate(ctx)
	if err != nil {
		bf.Logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", ctx.Request.RawPath).
			Msg("rejected request")
		return rejected(ctx, err), true
	}
	authed := auth.WithIdentity(*ctx.Context, identity)
	return &FilterContext{
		Request:  ctx.Request,
		Response: ctx.Response,
		Context:  &authed,
	}, false
}

func (bf *BearerTokenFilter) authenticate(ctx *FilterContext) (auth.Identity, error) {
	header := ctx.Request.Headers["authorization"]
	if header == "" {
		header = ctx.Request.Headers["Authorization"]
	}
	rawToken, err := auth.BearerToken(header)
	if err != nil {
		return auth.Identity{}, err
	}
	return bf.Verifier.Verify(*ctx.Context, rawToken)
}

// rejected never echoes the verification failure in the body. The code hints
// at what to fix; the cause stays in the logs.
func rejected(ctx *FilterContext, err error) *FilterContext {
	code := "Unauthorized"
	if re, ok := err.(exceptions.RequestError); ok {
		code = re.ToServiceError().Code
	}
	body, marshalErr := json.Marshal(map[string]string{
		"error":   code,
		"message": "Unauthorized",
	})
	if marshalErr != nil {
		body = []byte(`{"error": "Unauthorized", "message": "Unauthorized"}`)
	}
	return &FilterContext{
		Request: ctx.Request,
		Context: ctx.Context,
		Response: &events.APIGatewayV2HTTPResponse{
			Headers: map[string]string{
				"Content-Type":   "application/json",
				"Content-Length": strconv.Itoa(len(body)),
			},
			StatusCode: 401,
			Body:       string(body),
		},
	}
}

func DefaultFilterContext(event events.APIGatewayV2HTTPRequest, ctx context.Context) *FilterContext {
	return &FilterContext{
		Request: &event,
		Response: &events.APIGatewayV2HTTPResponse{
			StatusCode: 200,
		},
		Context: &ctx,
	}
}

func DefaultCorsFilter() *CorsFilter {
	methods := [4]string{"GET", "PUT", "POST", "DELETE"}
	headers := [3]string{"Content-Type", "Content-Length", "Authorization"}
	origins := [1]string{"*"}
	return &CorsFilter{
		Methods: methods[:],
		Headers: headers[:],
		Origins: origins[:],
	}
}

func NewBearerTokenFilter(logger zerolog.Logger, verifier TokenVerifier, public *auth.RouteSet) *BearerTokenFilter {
	return &BearerTokenFilter{
		Logger:   logger,
		Verifier: verifier,
		Public:   public,
	}
}
