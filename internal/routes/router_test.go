package routes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/auth"
	itemData "worthwatch.me/watchlists/internal/dynamodb/items"
	likeData "worthwatch.me/watchlists/internal/dynamodb/likes"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	userData "worthwatch.me/watchlists/internal/dynamodb/users"
	watchlistData "worthwatch.me/watchlists/internal/dynamodb/watchlists"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/filters"
	"worthwatch.me/watchlists/internal/routes/health"
	"worthwatch.me/watchlists/internal/routes/users"
	"worthwatch.me/watchlists/internal/routes/watchlists"
	"worthwatch.me/watchlists/internal/test"
)

// identityFilter stands in for the bearer token gate, binding a fixed
// identity the way the real filter binds a verified one.
type identityFilter struct {
	Identity *auth.Identity
}

func (f *identityFilter) Filter(ctx *filters.FilterContext) (*filters.FilterContext, bool) {
	authed := auth.WithIdentity(*ctx.Context, *f.Identity)
	return &filters.FilterContext{
		Request:  ctx.Request,
		Response: ctx.Response,
		Context:  &authed,
	}, false
}

type server struct {
	Router   *routes.Router
	Identity *auth.Identity
}

func newServer(t *testing.T) *server {
	t.Helper()
	client := test.NewMemoryDynamoDB()
	marshaler := token.NewGCM()
	logger := zerolog.Nop()
	identity := &auth.Identity{
		UserId:   "u-1",
		Email:    "nobody@example.com",
		Username: "nobody",
	}
	watchlistService := watchlistData.NewWatchlistService(test.LocalTableName, client, marshaler)
	itemService := itemData.NewWatchlistItemService(test.LocalTableName, client, marshaler)
	likeService := likeData.NewLikeService(test.LocalTableName, client, marshaler)
	userService := userData.NewUserService(test.LocalTableName, client, marshaler)
	router := routes.NewRouter(
		logger,
		[]filters.RequestFilter{
			filters.DefaultCorsFilter(),
			&identityFilter{Identity: identity},
		},
		health.NewRoute("test"),
		users.NewRoute(userService, likeService),
		watchlists.NewRoute(logger, watchlistService, itemService, likeService, nil),
	)
	return &server{Router: router, Identity: identity}
}

func (s *server) request(t *testing.T, method string, path string, body string, out any) events.APIGatewayV2HTTPResponse {
	t.Helper()
	event := events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
	}
	event.RequestContext.HTTP.Method = method
	response := s.Router.Invoke(event, context.Background())
	if out != nil && response.Body != "" {
		require.NoError(t, json.Unmarshal([]byte(response.Body), out))
	}
	return response
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestRouter(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		s := newServer(t)
		var status map[string]string
		response := s.request(t, "GET", "/health", "", &status)
		assert.Equal(t, 200, response.StatusCode)
		assert.Equal(t, "ok", status["status"])
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		s := newServer(t)
		var body errorBody
		response := s.request(t, "GET", "/nope", "", &body)
		assert.Equal(t, 404, response.StatusCode)
		assert.Equal(t, "NotFound", body.Error)
	})

	t.Run("CorsPreflight", func(t *testing.T) {
		s := newServer(t)
		response := s.request(t, "OPTIONS", "/watchlists", "", nil)
		assert.Equal(t, 200, response.StatusCode)
		assert.Equal(t, "*", response.Headers["access-control-allow-origin"])
	})

	t.Run("CreateUserFromIdentity", func(t *testing.T) {
		s := newServer(t)
		var created users.User
		response := s.request(t, "POST", "/users", "{}", &created)
		require.Equal(t, 201, response.StatusCode)
		assert.Equal(t, "u-1", created.Id)
		assert.Equal(t, "nobody@example.com", created.Email)
		assert.Equal(t, "nobody", created.Username)

		var fetched users.User
		response = s.request(t, "GET", "/users/me", "", &fetched)
		require.Equal(t, 200, response.StatusCode)
		assert.Equal(t, created.Id, fetched.Id)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		s := newServer(t)
		var body errorBody
		response := s.request(t, "POST", "/watchlists", `{"title": "Ok", "coverImageUrl": "not a url"}`, &body)
		assert.Equal(t, 400, response.StatusCode)
		assert.Equal(t, "ValidationError", body.Error)
	})

	t.Run("WatchlistLifecycle", func(t *testing.T) {
		s := newServer(t)

		var created watchlists.Watchlist
		response := s.request(t, "POST", "/watchlists", `{"title": "Late night picks"}`, &created)
		require.Equal(t, 201, response.StatusCode)
		require.NotEmpty(t, created.Id)
		assert.Equal(t, "u-1", created.CuratorId)
		assert.True(t, created.IsPublic)

		base := "/watchlists/" + created.Id

		var item watchlists.WatchlistItem
		response = s.request(t, "POST", base+"/items", `{"contentType": "MOVIE", "contentId": "m-1"}`, &item)
		require.Equal(t, 201, response.StatusCode)
		assert.Equal(t, "m-1", item.ContentId)

		var page struct {
			Items []watchlists.WatchlistItem `json:"items"`
		}
		response = s.request(t, "GET", base+"/items", "", &page)
		require.Equal(t, 200, response.StatusCode)
		require.Len(t, page.Items, 1)

		var like watchlists.Like
		response = s.request(t, "POST", base+"/likes", "", &like)
		require.Equal(t, 201, response.StatusCode)
		assert.Equal(t, "u-1", like.UserId)

		var liked map[string]bool
		response = s.request(t, "GET", base+"/likes/me", "", &liked)
		require.Equal(t, 200, response.StatusCode)
		assert.True(t, liked["liked"])

		var fetched watchlists.Watchlist
		response = s.request(t, "GET", base, "", &fetched)
		require.Equal(t, 200, response.StatusCode)
		assert.Equal(t, 1, fetched.ItemCount)
		assert.Equal(t, 1, fetched.LikeCount)

		response = s.request(t, "DELETE", base+"/items/MOVIE/m-1", "", nil)
		assert.Equal(t, 204, response.StatusCode)

		response = s.request(t, "DELETE", base+"/likes", "", nil)
		assert.Equal(t, 204, response.StatusCode)

		response = s.request(t, "DELETE", base, "", nil)
		assert.Equal(t, 204, response.StatusCode)

		var missing errorBody
		response = s.request(t, "GET", base, "", &missing)
		assert.Equal(t, 404, response.StatusCode)
		assert.Equal(t, "NotFound", missing.Error)
	})

	t.Run("CuratorListing", func(t *testing.T) {
		s := newServer(t)
		for i := 0; i < 2; i++ {
			response := s.request(t, "POST", "/watchlists", fmt.Sprintf(`{"title": "List %d"}`, i), nil)
			require.Equal(t, 201, response.StatusCode)
		}
		var page struct {
			Items []watchlists.Watchlist `json:"items"`
		}
		response := s.request(t, "GET", "/curators/u-1/watchlists", "", &page)
		require.Equal(t, 200, response.StatusCode)
		assert.Len(t, page.Items, 2)
	})
}

func TestMatchEventBindsEveryParam(t *testing.T) {
	route := routes.CachedRoute{
		Method:  "DELETE",
		Path:    "/watchlists/:id/items/:contentType/:contentId",
		Matcher: &routes.CachedMatcher{Mutex: &sync.Mutex{}},
	}
	event := events.APIGatewayV2HTTPRequest{
		RawPath: "/watchlists/abc-123/items/MOVIE/m-1",
	}
	event.RequestContext.HTTP.Method = "DELETE"

	params, ok := route.MatchEvent(event)
	require.True(t, ok)
	assert.Equal(t, "abc-123", params["id"])
	assert.Equal(t, "MOVIE", params["contentType"])
	assert.Equal(t, "m-1", params["contentId"])

	event.RawPath = "/watchlists/abc-123/items/MOVIE"
	_, ok = route.MatchEvent(event)
	assert.False(t, ok)
}

// brokenRoutes surfaces the kind of raw driver error the store layer passes
// through unclassified.
type brokenRoutes struct{}

func (brokenRoutes) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/broken": func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
			return events.APIGatewayV2HTTPResponse{}, fmt.Errorf("ProvisionedThroughputExceededException: rate of requests exceeds throughput")
		},
	}
}

func TestUnclassifiedErrorKeepsDriverTextOutOfBody(t *testing.T) {
	router := routes.NewRouter(zerolog.Nop(), nil, brokenRoutes{})
	event := events.APIGatewayV2HTTPRequest{RawPath: "/broken"}
	event.RequestContext.HTTP.Method = "GET"

	response := router.Invoke(event, context.Background())
	assert.Equal(t, 500, response.StatusCode)

	var body errorBody
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	assert.Equal(t, "InternalError", body.Error)
	assert.Equal(t, "Unexpected internal error", body.Message)
	assert.NotContains(t, response.Body, "ProvisionedThroughputExceededException")
}

// rejectingVerifier fails every token the same way the real verifier fails a
// bad signature.
type rejectingVerifier struct{}

func (rejectingVerifier) Verify(ctx context.Context, rawToken string) (auth.Identity, error) {
	return auth.Identity{}, fmt.Errorf("unverifiable token")
}

func TestBearerTokenGate(t *testing.T) {
	logger := zerolog.Nop()
	router := routes.NewRouter(
		logger,
		[]filters.RequestFilter{
			filters.NewBearerTokenFilter(logger, rejectingVerifier{}, auth.NewRouteSet("GET:/health")),
		},
		health.NewRoute("test"),
	)

	invoke := func(method string, path string, headers map[string]string) events.APIGatewayV2HTTPResponse {
		event := events.APIGatewayV2HTTPRequest{
			RawPath: path,
			Headers: headers,
		}
		event.RequestContext.HTTP.Method = method
		return router.Invoke(event, context.Background())
	}

	t.Run("PublicRoutePasses", func(t *testing.T) {
		response := invoke("GET", "/health", nil)
		assert.Equal(t, 200, response.StatusCode)
	})

	t.Run("MissingTokenRejected", func(t *testing.T) {
		response := invoke("POST", "/watchlists", nil)
		assert.Equal(t, 401, response.StatusCode)

		var body errorBody
		require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
		assert.Equal(t, "Unauthorized", body.Message)
	})

	t.Run("BadTokenRejected", func(t *testing.T) {
		response := invoke("POST", "/watchlists", map[string]string{
			"authorization": "Bearer garbage",
		})
		assert.Equal(t, 401, response.StatusCode)
	})

	t.Run("PreflightSkipsGate", func(t *testing.T) {
		response := invoke("OPTIONS", "/watchlists", nil)
		// The gate passes preflights through; with no matching route the
		// router still answers, never with a 401.
		assert.NotEqual(t, 401, response.StatusCode)
	})
}
