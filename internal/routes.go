package internal

import (
	"net/http"
	"socialstats/internal/controllers"
	"socialstats/internal/providers"

	"github.com/klauspost/compress/gzhttp"
)

func InitRoutes(snapshotController *controllers.SnapshotController, runController *controllers.RunController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/snapshot", gzhttp.GzipHandler(http.HandlerFunc(snapshotController.GetSnapshot)))
	routers.Post("/run", http.HandlerFunc(runController.TriggerRun))
	return routers
}
