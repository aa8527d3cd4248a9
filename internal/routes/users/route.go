package users

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"worthwatch.me/watchlists/internal/auth"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/util"
)

type UserService struct {
	data  data.UserDataService
	likes data.LikeDataService
}

func NewRoute(userData data.UserDataService, likeData data.LikeDataService) routes.Service {
	return &UserService{
		data:  userData,
		likes: likeData,
	}
}

func (us *UserService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"POST:/users":          us.CreateUser,
		"PUT:/users/me":        us.UpdateSelf,
		"DELETE:/users/me":     us.DeleteSelf,
		"GET:/users/:id":       us.GetUser,
		"GET:/users/:id/likes": us.ListLikes,
	}
}

// resolveUserId maps the reserved id "me" to the authenticated principal.
// Routes share a flat match table, so the alias is resolved here rather than
// as a competing pattern.
func resolveUserId(ctx context.Context) (string, error) {
	id := routes.Params(ctx)["id"]
	if id != "me" {
		return id, nil
	}
	identity, err := caller(ctx)
	if err != nil {
		return "", err
	}
	return identity.UserId, nil
}

func caller(ctx context.Context) (auth.Identity, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return identity, exceptions.MissingToken()
	}
	return identity, nil
}

// CreateUser registers the authenticated principal's profile row. Identity
// and email come from the verified token, never the body.
func (us *UserService) CreateUser(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	input, err := util.DecodeBody[UserInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if input.Username == nil && identity.Username != "" {
		input.Username = &identity.Username
	}
	created, err := us.data.CreateUser(ctx, input.ToData(identity.UserId, identity.Email))
	return util.SerializeResponseCreated(NewUser, created, err)
}

func (us *UserService) UpdateSelf(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	input, err := util.DecodeBody[UserInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item, err := us.data.UpdateUser(ctx, identity.UserId, input.ToData("", ""))
	return util.SerializeResponseOK(NewUser, item, err)
}

func (us *UserService) DeleteSelf(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	err = us.data.DeleteUser(ctx, identity.UserId)
	return util.SerializeResponseNoContent(err)
}

func (us *UserService) GetUser(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	userId, err := resolveUserId(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item, err := us.data.GetUserById(ctx, userId)
	return util.SerializeResponseOK(NewUser, item, err)
}

func (us *UserService) ListLikes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	userId, err := resolveUserId(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := us.likes.ListLikesByUser(ctx, userId, params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewLike), items, err)
}
