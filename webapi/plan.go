package webapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/weekendly/planner/pkg/domain"
	"github.com/weekendly/planner/pkg/planner"
)

// planItinerary is the wire shape of one ranked itinerary. The debug view
// additionally carries the full price breakdown.
type planItinerary struct {
	Provider   string                 `json:"provider"`
	Title      string                 `json:"title"`
	StartTS    string                 `json:"start_ts"`
	City       string                 `json:"city,omitempty"`
	Total      float64                `json:"total"`
	Currency   string                 `json:"currency"`
	Score      float64                `json:"score"`
	BuyNow     bool                   `json:"buy_now"`
	BuyReason  string                 `json:"buy_reason"`
	DistanceKm float64                `json:"distance_km"`
	CO2KgPp    float64                `json:"co2_kg_pp"`
	URL        string                 `json:"url,omitempty"`
	Forecast   *domain.Forecast       `json:"forecast,omitempty"`
	Breakdown  *domain.PriceBreakdown `json:"breakdown,omitempty"`
}

type planResponse struct {
	Date            string                `json:"date"`
	Currency        string                `json:"currency"`
	Itineraries     []planItinerary       `json:"itineraries"`
	Dining          []domain.DiningOption `json:"dining,omitempty"`
	RatesProvenance string                `json:"rates_provenance,omitempty"`
	GeneratedAt     string                `json:"generated_at"`
}

// PlanRoutes registers the planning endpoint.
func PlanRoutes(app *fiber.App, p *planner.Planner) {
	app.Get("/api/plan", Plan(p))
}

// Plan runs one planning query.
// @Summary Plan a weekend
// @Description Aggregate ticket, dining and weather sources and return the ranked shortlist
// @Tags plan
// @Produce json
// @Param date query string false "Target day (YYYY-MM-DD), defaults to today"
// @Param budget query number true "Per-person budget in the configured currency"
// @Param dining query bool false "Include dining options"
// @Param debug query bool false "Include price breakdowns and FX provenance"
// @Success 200 {object} Response
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /api/plan [get]
func Plan(p *planner.Planner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		budget, err := strconv.ParseFloat(c.Query("budget"), 64)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid budget", "budget must be a number")
		}
		withDining := c.QueryBool("dining")
		debug := c.QueryBool("debug")

		result, err := p.Plan(c.Context(), planner.PlanRequest{
			Date:       c.Query("date"),
			BudgetPp:   budget,
			WithDining: withDining,
			HomeCity:   c.Query("home_city"),
		})
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Planning failed", err.Error())
		}

		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Plan ready",
			Data:    renderPlan(result, debug),
		})
	}
}

func renderPlan(result *planner.PlanResult, debug bool) planResponse {
	out := planResponse{
		Date:        result.Date,
		Currency:    result.Currency,
		Itineraries: make([]planItinerary, 0, len(result.Itineraries)),
		Dining:      result.Dining,
		GeneratedAt: result.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if debug {
		out.RatesProvenance = string(result.RatesProvenance)
	}
	for _, it := range result.Itineraries {
		item := planItinerary{
			Provider:   it.Offer.Provider,
			Title:      it.Offer.Title,
			StartTS:    it.Offer.StartTS.Format("2006-01-02T15:04:05Z07:00"),
			City:       it.Offer.City,
			Total:      it.Price.Total,
			Currency:   string(it.Price.Currency),
			Score:      it.Score,
			BuyNow:     it.BuyNow,
			BuyReason:  it.BuyReason,
			DistanceKm: it.DistanceKm,
			CO2KgPp:    it.CO2KgPp,
			URL:        it.Offer.URL,
			Forecast:   it.Forecast,
		}
		if debug {
			breakdown := it.Price
			item.Breakdown = &breakdown
		}
		out.Itineraries = append(out.Itineraries, item)
	}
	return out
}
