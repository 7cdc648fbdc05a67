package internal

import (
	"net/http"

	"divelog/internal/controllers"
	"divelog/internal/providers"
	"divelog/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	// One path per route: the router pairs each path with a single method.
	routers.Get("/dives", http.HandlerFunc(apiController.GetDives))
	routers.Post("/dives/add", http.HandlerFunc(apiController.AddDive))
	routers.Delete("/dives/remove", http.HandlerFunc(apiController.RemoveDive))
	routers.Post("/import", http.HandlerFunc(apiController.ImportLogbook))
	routers.Get("/sites", http.HandlerFunc(apiController.GetSites))
	routers.Post("/filter", http.HandlerFunc(apiController.SetFilter))
	routers.Delete("/filter/reset", http.HandlerFunc(apiController.ResetFilter))
	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/scatter", http.HandlerFunc(apiController.GetScatter))
	routers.Post("/plan", http.HandlerFunc(apiController.RenderPlan))
	return routers
}
