package health

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"worthwatch.me/watchlists/internal/routes"
	"worthwatch.me/watchlists/internal/routes/util"
)

type HealthService struct {
	Version string
}

func NewRoute(version string) routes.Service {
	return &HealthService{
		Version: version,
	}
}

func (hs *HealthService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/health": hs.GetHealth,
	}
}

func (hs *HealthService) GetHealth(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	return util.SerializeResponseOK(func(version string) map[string]string {
		return map[string]string{
			"status":  "ok",
			"version": version,
		}
	}, hs.Version, nil)
}
