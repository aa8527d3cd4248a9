package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/auth"
)

// Authorizer is the standalone API Gateway gate. It verifies the bearer
// token the same way the in-process filter does and exposes the principal
// through the authorizer context.
type Authorizer struct {
	Logger   zerolog.Logger
	Verifier *auth.Verifier
}

func (a *Authorizer) HandleRequest(ctx context.Context, event events.APIGatewayV2CustomAuthorizerV2Request) (events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	denied := events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: false,
	}
	header, ok := event.Headers["authorization"]
	if !ok {
		header = event.Headers["Authorization"]
	}
	rawToken, err := auth.BearerToken(header)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("rejected request")
		return denied, nil
	}
	identity, err := a.Verifier.Verify(ctx, rawToken)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("rejected request")
		return denied, nil
	}
	return events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: true,
		Context: map[string]interface{}{
			"userId":   identity.UserId,
			"email":    identity.Email,
			"username": identity.Username,
		},
	}, nil
}

func main() {
	authorizer := &Authorizer{
		Logger: zerolog.New(os.Stdout).With().Timestamp().Logger(),
		Verifier: auth.NewVerifier(
			os.Getenv("AWS_REGION"),
			os.Getenv("USER_POOL_ID"),
			os.Getenv("USER_POOL_CLIENT_ID"),
		),
	}
	lambda.Start(authorizer.HandleRequest)
}
