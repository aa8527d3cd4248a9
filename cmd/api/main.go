package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/auth"
	itemData "worthwatch.me/watchlists/internal/dynamodb/items"
	likeData "worthwatch.me/watchlists/internal/dynamodb/likes"
	movieData "worthwatch.me/watchlists/internal/dynamodb/movies"
	showData "worthwatch.me/watchlists/internal/dynamodb/shows"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	userData "worthwatch.me/watchlists/internal/dynamodb/users"
	watchlistData "worthwatch.me/watchlists/internal/dynamodb/watchlists"
	"worthwatch.me/watchlists/internal/notifications"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/catalog"
	"worthwatch.me/watchlists/internal/routes/filters"
	"worthwatch.me/watchlists/internal/routes/health"
	"worthwatch.me/watchlists/internal/routes/movies"
	"worthwatch.me/watchlists/internal/routes/shows"
	"worthwatch.me/watchlists/internal/routes/users"
	"worthwatch.me/watchlists/internal/routes/watchlists"
	snsServices "worthwatch.me/watchlists/internal/sns/services"
	"worthwatch.me/watchlists/internal/tmdb"
)

// PublicRoutes is the browse surface reachable without a token. Everything
// else requires a verified bearer token.
func PublicRoutes() *auth.RouteSet {
	return auth.NewRouteSet(
		"GET:/health",
		"GET:/watchlists",
		"GET:/watchlists/:id",
		"GET:/watchlists/:id/items",
		"GET:/watchlists/:id/likes",
		"GET:/curators/:id/watchlists",
		"GET:/movies",
		"GET:/movies/:id",
		"GET:/shows",
		"GET:/shows/:id",
		"GET:/users/:id",
	)
}

type App struct {
	Router *routes.Router
}

func NewApp() App {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	tableName := os.Getenv("TABLE_NAME")
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS config")
	}
	client := dynamodb.NewFromConfig(cfg)
	marshaler := token.NewGCM()

	verifier := auth.NewVerifier(
		os.Getenv("AWS_REGION"),
		os.Getenv("USER_POOL_ID"),
		os.Getenv("USER_POOL_CLIENT_ID"),
	)

	var notifier notifications.CuratorNotifier
	if topicArn := os.Getenv("TOPIC_ARN"); topicArn != "" {
		notifier = &snsServices.NotificationSNSService{
			Sns:      sns.NewFromConfig(cfg),
			TopicArn: topicArn,
		}
	}

	requestFilters := []filters.RequestFilter{
		filters.DefaultCorsFilter(),
		filters.NewBearerTokenFilter(logger, verifier, PublicRoutes()),
	}
	routeServices := []routes.Service{
		health.NewRoute(os.Getenv("VERSION")),
		users.NewRoute(
			userData.NewUserService(tableName, client, marshaler),
			likeData.NewLikeService(tableName, client, marshaler),
		),
		watchlists.NewRoute(
			logger,
			watchlistData.NewWatchlistService(tableName, client, marshaler),
			itemData.NewWatchlistItemService(tableName, client, marshaler),
			likeData.NewLikeService(tableName, client, marshaler),
			notifier,
		),
		movies.NewRoute(movieData.NewMovieService(tableName, client, marshaler)),
		shows.NewRoute(showData.NewShowService(tableName, client, marshaler)),
	}
	if catalogToken := os.Getenv("TMDB_API_TOKEN"); catalogToken != "" {
		routeServices = append(routeServices, catalog.NewRoute(tmdb.NewCatalogAPI(catalogToken)))
	}
	return App{
		Router: routes.NewRouter(logger, requestFilters, routeServices...),
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	app := NewApp()
	lambda.Start(app.HandleRequest)
}
