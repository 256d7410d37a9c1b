package charts

import (
	"net/http"
	"strconv"

	"github.com/DBP-2025-2/music-app-sub000/pkg/auth"
	JSON "github.com/DBP-2025-2/music-app-sub000/pkg/json-utilities"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/sirupsen/logrus"
)

const defaultChartType = "top200"

func RegisterHandlers(engine rest.Engine, cr ChartRepository, tm *auth.TokenManager, logger logrus.FieldLogger) {
	engine.Get("/charts/periods", listPeriods(cr, logger))
	engine.Get("/charts/weekly", getWeeklyChart(cr, logger), auth.OptionalAuth(tm))
}

// listPeriods handles the GET "/charts/periods" route.
func listPeriods(cr ChartRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		periods, err := cr.ListPeriods()
		if err != nil {
			logger.WithError(err).Error("error listing chart periods")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, periods)
	}
}

// getWeeklyChart handles the GET "/charts/weekly?year=&week=&type=" route.
// Like annotations reflect the viewer when a valid bearer token accompanies
// the request; the chart itself is public.
func getWeeklyChart(cr ChartRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var query = request.URL.Query()

		year, err := strconv.Atoi(query.Get("year"))
		if err != nil || year < 1900 {
			JSON.BadRequestWithMessage(writer, "Malformed or missing year")
			return
		}

		week, err := strconv.Atoi(query.Get("week"))
		if err != nil || week < 1 || week > 53 {
			JSON.BadRequestWithMessage(writer, "Malformed or missing week")
			return
		}

		var chartType = query.Get("type")
		if chartType == "" {
			chartType = defaultChartType
		}

		entries, err := cr.ListWeeklyEntries(year, week, chartType, auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error listing weekly chart entries")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, WeeklyChartResponse{Year: year, Week: week, ChartType: chartType, Entries: entries})
	}
}
