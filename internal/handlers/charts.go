package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/repository"
)

// ChartsHandler returns ECharts option objects the dashboard renders as is.
type ChartsHandler struct {
	log  *zap.Logger
	repo *repository.Repository
}

func NewChartsHandler(log *zap.Logger, repo *repository.Repository) *ChartsHandler {
	return &ChartsHandler{log: log, repo: repo}
}

func (h *ChartsHandler) Scores(c *gin.Context) {
	data, err := h.repo.GetScoreTimeline(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	chart := generateTimelineChart(data, "Assessment Scores", "Score (%)")
	c.JSON(http.StatusOK, chart.JSON())
}

func (h *ChartsHandler) Moods(c *gin.Context) {
	data, err := h.repo.GetMoodTimeline(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	chart := generateTimelineChart(data, "Mood Check-ins", "Entries per day")
	c.JSON(http.StatusOK, chart.JSON())
}

func (h *ChartsHandler) MoodDistribution(c *gin.Context) {
	moods, err := h.repo.ListMoods(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	chart := generateDistributionChart(repository.MoodDistribution(moods))
	c.JSON(http.StatusOK, chart.JSON())
}

func generateTimelineChart(data []repository.TimelineDataPoint, title, seriesLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: seriesLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	// Points are [date, value] pairs on the time axis.
	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(seriesLabel, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func generateDistributionChart(counts []repository.MoodCount) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Mood Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.PieData, 0, len(counts))
	for _, mc := range counts {
		items = append(items, opts.PieData{Name: mc.Emoji + " " + mc.Label, Value: mc.Count})
	}
	pie.AddSeries("Moods", items)
	return pie
}
