package movies

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/util"
)

type MovieService struct {
	data data.MovieDataService
}

func NewRoute(movieData data.MovieDataService) routes.Service {
	return &MovieService{
		data: movieData,
	}
}

func (ms *MovieService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/movies":        ms.ListMovies,
		"POST:/movies":       ms.CreateMovie,
		"GET:/movies/:id":    ms.GetMovie,
		"PUT:/movies/:id":    ms.UpdateMovie,
		"DELETE:/movies/:id": ms.DeleteMovie,
	}
}

func (ms *MovieService) ListMovies(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if tmdbId, ok := event.QueryStringParameters["tmdbId"]; ok {
		item, err := ms.data.GetMovieByTmdbId(ctx, tmdbId)
		return util.SerializeResponseOK(NewMovie, item, err)
	}
	items, err := ms.data.ListMovies(ctx, params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewMovie), items, err)
}

func (ms *MovieService) CreateMovie(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[MovieInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := ms.data.CreateMovie(ctx, input.ToData())
	return util.SerializeResponseCreated(NewMovie, created, err)
}

func (ms *MovieService) GetMovie(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := ms.data.GetMovieById(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseOK(NewMovie, item, err)
}

func (ms *MovieService) UpdateMovie(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[MovieInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item, err := ms.data.UpdateMovie(ctx, routes.Params(ctx)["id"], input.ToData())
	return util.SerializeResponseOK(NewMovie, item, err)
}

func (ms *MovieService) DeleteMovie(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := ms.data.DeleteMovie(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseNoContent(err)
}
