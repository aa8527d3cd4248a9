package catalog

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/provider"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/util"
)

// CatalogService exposes the external content catalog so curators can find
// titles before adding them. Nothing here touches the store.
type CatalogService struct {
	Service provider.ContentProvider
}

func NewRoute(contentProvider provider.ContentProvider) routes.Service {
	return &CatalogService{
		Service: contentProvider,
	}
}

func (cs *CatalogService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/catalog/movies":     cs.SearchMovies,
		"GET:/catalog/movies/:id": cs.LookupMovie,
		"GET:/catalog/shows":      cs.SearchShows,
		"GET:/catalog/shows/:id":  cs.LookupShow,
	}
}

func searchText(event events.APIGatewayV2HTTPRequest) (string, error) {
	text, ok := event.QueryStringParameters["search"]
	if !ok || text == "" {
		return "", exceptions.InvalidInput("Need a search parameter set")
	}
	return text, nil
}

func (cs *CatalogService) SearchMovies(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	text, err := searchText(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	query, err := cs.Service.SearchMovies(ctx, text)
	return util.SerializeResponseOK(util.IdentityThunk, query, err)
}

func (cs *CatalogService) LookupMovie(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	query, err := cs.Service.LookupMovie(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseOK(util.IdentityThunk, query, err)
}

func (cs *CatalogService) SearchShows(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	text, err := searchText(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	query, err := cs.Service.SearchShows(ctx, text)
	return util.SerializeResponseOK(util.IdentityThunk, query, err)
}

func (cs *CatalogService) LookupShow(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	query, err := cs.Service.LookupShow(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseOK(util.IdentityThunk, query, err)
}
