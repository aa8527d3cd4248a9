package shows

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/util"
)

type ShowService struct {
	data data.ShowDataService
}

func NewRoute(showData data.ShowDataService) routes.Service {
	return &ShowService{
		data: showData,
	}
}

func (ss *ShowService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/shows":        ss.ListShows,
		"POST:/shows":       ss.CreateShow,
		"GET:/shows/:id":    ss.GetShow,
		"PUT:/shows/:id":    ss.UpdateShow,
		"DELETE:/shows/:id": ss.DeleteShow,
	}
}

func (ss *ShowService) ListShows(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if tmdbId, ok := event.QueryStringParameters["tmdbId"]; ok {
		item, err := ss.data.GetShowByTmdbId(ctx, tmdbId)
		return util.SerializeResponseOK(NewShow, item, err)
	}
	items, err := ss.data.ListShows(ctx, params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewShow), items, err)
}

func (ss *ShowService) CreateShow(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[ShowInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := ss.data.CreateShow(ctx, input.ToData())
	return util.SerializeResponseCreated(NewShow, created, err)
}

func (ss *ShowService) GetShow(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := ss.data.GetShowById(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseOK(NewShow, item, err)
}

func (ss *ShowService) UpdateShow(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[ShowInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item, err := ss.data.UpdateShow(ctx, routes.Params(ctx)["id"], input.ToData())
	return util.SerializeResponseOK(NewShow, item, err)
}

func (ss *ShowService) DeleteShow(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := ss.data.DeleteShow(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseNoContent(err)
}
