package watchlists

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/auth"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/notifications"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/util"
)

type WatchlistService struct {
	logger   zerolog.Logger
	data     data.WatchlistDataService
	items    data.WatchlistItemDataService
	likes    data.LikeDataService
	notifier notifications.CuratorNotifier
}

func NewRoute(
	logger zerolog.Logger,
	watchlistData data.WatchlistDataService,
	itemData data.WatchlistItemDataService,
	likeData data.LikeDataService,
	notifier notifications.CuratorNotifier,
) routes.Service {
	return &WatchlistService{
		logger:   logger,
		data:     watchlistData,
		items:    itemData,
		likes:    likeData,
		notifier: notifier,
	}
}

func (ws *WatchlistService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/watchlists":        ws.ListPublicWatchlists,
		"POST:/watchlists":       ws.CreateWatchlist,
		"GET:/watchlists/:id":    ws.GetWatchlist,
		"PUT:/watchlists/:id":    ws.UpdateWatchlist,
		"DELETE:/watchlists/:id": ws.DeleteWatchlist,

		"GET:/watchlists/:id/items":                          ws.ListItems,
		"POST:/watchlists/:id/items":                         ws.AddItem,
		"PUT:/watchlists/:id/items":                          ws.ReorderItems,
		"DELETE:/watchlists/:id/items/:contentType/:contentId": ws.RemoveItem,

		"GET:/watchlists/:id/likes":    ws.ListLikes,
		"GET:/watchlists/:id/likes/me": ws.HasLiked,
		"POST:/watchlists/:id/likes":   ws.LikeWatchlist,
		"DELETE:/watchlists/:id/likes": ws.UnlikeWatchlist,

		"GET:/curators/:id/watchlists": ws.ListCuratorWatchlists,
	}
}

func (ws *WatchlistService) ListCuratorWatchlists(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := ws.data.ListWatchlistsByCurator(ctx, routes.Params(ctx)["id"], params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewWatchlist), items, err)
}

func (ws *WatchlistService) HasLiked(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	liked, err := ws.likes.HasLiked(ctx, identity.UserId, routes.Params(ctx)["id"])
	return util.SerializeResponseOK(func(liked bool) map[string]bool {
		return map[string]bool{"liked": liked}
	}, liked, err)
}

func caller(ctx context.Context) (auth.Identity, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return identity, exceptions.MissingToken()
	}
	return identity, nil
}

func (ws *WatchlistService) ListPublicWatchlists(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := ws.data.ListPublicWatchlists(ctx, params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewWatchlist), items, err)
}

func (ws *WatchlistService) CreateWatchlist(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	input, err := util.DecodeBody[WatchlistInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := ws.data.CreateWatchlist(ctx, input.ToData(identity.UserId))
	return util.SerializeResponseCreated(NewWatchlist, created, err)
}

func (ws *WatchlistService) GetWatchlist(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := ws.data.GetWatchlistById(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseOK(NewWatchlist, item, err)
}

func (ws *WatchlistService) UpdateWatchlist(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[WatchlistInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	item, err := ws.data.UpdateWatchlist(ctx, routes.Params(ctx)["id"], input.ToData(""))
	return util.SerializeResponseOK(NewWatchlist, item, err)
}

func (ws *WatchlistService) DeleteWatchlist(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := ws.data.DeleteWatchlist(ctx, routes.Params(ctx)["id"])
	return util.SerializeResponseNoContent(err)
}

func (ws *WatchlistService) ListItems(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := ws.items.ListItemsByWatchlist(ctx, routes.Params(ctx)["id"], params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewWatchlistItem), items, err)
}

func (ws *WatchlistService) AddItem(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[WatchlistItemInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := ws.items.AddItem(ctx, routes.Params(ctx)["id"], input.ToData())
	return util.SerializeResponseCreated(NewWatchlistItem, created, err)
}

func (ws *WatchlistService) ReorderItems(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.DecodeBody[ReorderInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	err = ws.items.ReorderItems(ctx, routes.Params(ctx)["id"], input.Items)
	return util.SerializeResponseNoContent(err)
}

func (ws *WatchlistService) RemoveItem(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params := routes.Params(ctx)
	err := ws.items.RemoveItem(ctx, params["id"], params["contentType"], params["contentId"])
	return util.SerializeResponseNoContent(err)
}

func (ws *WatchlistService) ListLikes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := ws.likes.ListLikesByWatchlist(ctx, routes.Params(ctx)["id"], params)
	return util.SerializeResponseOK(util.ConvertQueryResultsPartial(NewLike), items, err)
}

func (ws *WatchlistService) LikeWatchlist(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	watchlistId := routes.Params(ctx)["id"]
	like, err := ws.likes.Like(ctx, identity.UserId, watchlistId)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	ws.notifyLiked(ctx, identity.UserId, watchlistId)
	return util.SerializeResponseCreated(NewLike, like, nil)
}

func (ws *WatchlistService) UnlikeWatchlist(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	identity, err := caller(ctx)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	err = ws.likes.Unlike(ctx, identity.UserId, routes.Params(ctx)["id"])
	return util.SerializeResponseNoContent(err)
}

func (ws *WatchlistService) notifyLiked(ctx context.Context, userId string, watchlistId string) {
	if ws.notifier == nil {
		return
	}
	watchlist, err := ws.data.GetWatchlistById(ctx, watchlistId)
	if err != nil {
		ws.logger.Warn().Err(err).Str("watchlistId", watchlistId).Msg("skipping like notification")
		return
	}
	err = ws.notifier.WatchlistLiked(ctx, notifications.WatchlistLikedEvent{
		WatchlistId: watchlist.WatchlistId,
		Title:       watchlist.Title,
		CuratorId:   watchlist.CuratorId,
		LikedBy:     userId,
		LikeCount:   watchlist.LikeCount,
	})
	if err != nil {
		ws.logger.Warn().Err(err).Str("watchlistId", watchlistId).Msg("failed to publish like notification")
	}
}
