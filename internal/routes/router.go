package routes

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"worthwatch.me/watchlists/internal/exceptions"
	"worthwatch.me/watchlists/internal/routes/filters"
)

type Route func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error)

type Service interface {
	GetRoutes() map[string]Route
}

type paramsKey struct{}

// Params returns the path parameters bound by the matched route pattern.
func Params(ctx context.Context) map[string]string {
	if params, ok := ctx.Value(paramsKey{}).(map[string]string); ok {
		return params
	}
	return map[string]string{}
}

type CachedMatcher struct {
	Matcher    *regexp.Regexp
	ParamNames []string
	Mutex      *sync.Mutex
}

type CachedRoute struct {
	Method  string
	Path    string
	Route   Route
	Matcher *CachedMatcher
}

func (cm *CachedMatcher) Refresh(path string) *regexp.Regexp {
	cm.Mutex.Lock()
	defer cm.Mutex.Unlock()
	if cm.Matcher == nil {
		namex := regexp.MustCompile(":[^/]+")
		regexPath := namex.ReplaceAllStringFunc(path, func(found string) string {
			cm.ParamNames = append(cm.ParamNames, found[1:])
			return "([^/]+)"
		})
		cm.Matcher = regexp.MustCompile("^" + regexPath + "$")
	}
	return cm.Matcher
}

func (cr *CachedRoute) MatchEvent(event events.APIGatewayV2HTTPRequest) (map[string]string, bool) {
	if event.RequestContext.HTTP.Method != cr.Method {
		return nil, false
	}
	params := make(map[string]string, len(cr.Matcher.ParamNames))
	if event.RawPath == cr.Path {
		return params, true
	}
	match := cr.Matcher.Refresh(cr.Path).FindStringSubmatchIndex(event.RawPath)
	if match != nil {
		// Capture group i occupies index pair 2(i+1) of the submatch index
		// slice; pair 0 is the whole match.
		for i, p := range cr.Matcher.ParamNames {
			params[p] = event.RawPath[match[2*i+2]:match[2*i+3]]
		}
	}
	return params, match != nil
}

type Router struct {
	Logger  zerolog.Logger
	Filters []filters.RequestFilter
	Routes  []CachedRoute
}

func NewRouter(logger zerolog.Logger, requestFilters []filters.RequestFilter, services ...Service) *Router {
	var routes []CachedRoute
	for _, service := range services {
		for composite, route := range service.GetRoutes() {
			parts := strings.SplitN(composite, ":", 2)
			routes = append(routes, CachedRoute{
				Method: parts[0],
				Path:   parts[1],
				Route:  route,
				Matcher: &CachedMatcher{
					Mutex: &sync.Mutex{},
				},
			})
		}
	}
	return &Router{
		Logger:  logger,
		Routes:  routes,
		Filters: requestFilters,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func translateError(err error) events.APIGatewayV2HTTPResponse {
	serviceError := &exceptions.ServiceError{
		StatusCode: 500,
		Code:       "InternalError",
		Cause:      err,
	}
	// Unclassified errors come straight from a driver. Their text never
	// reaches the response body; the caller logs them.
	message := "Unexpected internal error"
	if re, ok := err.(exceptions.RequestError); ok {
		serviceError = re.ToServiceError()
		message = re.Error()
	}
	if se, ok := err.(*exceptions.ServiceError); ok {
		serviceError = se
		message = se.Error()
	}
	body, marshalErr := json.Marshal(errorBody{
		Error:   serviceError.Code,
		Message: message,
	})
	if marshalErr != nil {
		body = []byte(`{"error": "InternalError", "message": "Unexpected internal error"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: serviceError.StatusCode,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"Content-Length": strconv.Itoa(len(body)),
		},
	}
}

func (r *Router) Invoke(event events.APIGatewayV2HTTPRequest, ctx context.Context) events.APIGatewayV2HTTPResponse {
	start := time.Now()
	response := r.dispatch(event, ctx)
	r.Logger.Info().
		Str("method", event.RequestContext.HTTP.Method).
		Str("path", event.RawPath).
		Int("status", response.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("handled request")
	return response
}

func (r *Router) dispatch(event events.APIGatewayV2HTTPRequest, ctx context.Context) events.APIGatewayV2HTTPResponse {
	filterContext := filters.DefaultFilterContext(event, ctx)
	for _, filter := range r.Filters {
		updatedContext, broken := filter.Filter(filterContext)
		if broken {
			return *updatedContext.Response
		}
		filterContext = updatedContext
	}
	for _, route := range r.Routes {
		if params, ok := route.MatchEvent(*filterContext.Request); ok {
			resp, err := route.Route(*filterContext.Request, context.WithValue(*filterContext.Context, paramsKey{}, params))
			if err != nil {
				r.Logger.Warn().
					Err(err).
					Str("method", event.RequestContext.HTTP.Method).
					Str("path", event.RawPath).
					Msg("request failed")
				return translateError(err)
			}
			return resp
		}
	}
	return translateError(exceptions.NotFound("route", event.RawPath))
}
