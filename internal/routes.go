package internal

import (
	"net/http"
	"replyguy/internal/controllers"
	"replyguy/internal/providers"
)

func InitRoutes(statusController *controllers.StatusController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/status", http.HandlerFunc(statusController.Status))
	routers.Get("/dashboard", http.HandlerFunc(statusController.Dashboard))
	return routers
}
