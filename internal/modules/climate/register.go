package climate

import (
	"net/http"
	"time"

	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/dataset"
	"climate-api/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, ds dataset.ClimateDataset, referenceDate time.Time) {
	climateService := service.NewService(ds, referenceDate)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
}
