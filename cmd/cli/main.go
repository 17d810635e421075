package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/weekendly/planner/infra/initializer"
	"github.com/weekendly/planner/pkg/config"
	"github.com/weekendly/planner/pkg/planner"
)

func main() {
	date := flag.String("date", "", "target day (YYYY-MM-DD), defaults to today")
	budget := flag.Float64("budget", 0, "per-person budget in the configured currency")
	dining := flag.Bool("dining", false, "include dining options")
	homeCity := flag.String("home", "", "home city override")
	offline := flag.Bool("offline", false, "use cached and bundled data only")
	flag.Parse()

	if err := run(*date, *budget, *dining, *homeCity, *offline); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func run(date string, budget float64, dining bool, homeCity string, offline bool) error {
	cfg, err := config.Load("settings.yaml", slog.Default())
	if err != nil {
		return err
	}
	if offline {
		cfg.App.Offline = true
	}
	cfg.Log.Level = "warn"

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}

	result, err := deps.Planner.Plan(context.Background(), planner.PlanRequest{
		Date:       date,
		BudgetPp:   budget,
		WithDining: dining,
		HomeCity:   homeCity,
	})
	if err != nil {
		return err
	}

	printPlan(result)
	return nil
}

func printPlan(result *planner.PlanResult) {
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		width = w
	}

	header := color.New(color.FgCyan, color.Bold)
	buy := color.New(color.FgGreen, color.Bold)
	wait := color.New(color.FgYellow)

	header.Printf("Weekend plan for %s (%s)\n", result.Date, result.Currency)
	fmt.Println(strings.Repeat("─", width))

	if len(result.Itineraries) == 0 {
		fmt.Println("No offers found.")
		return
	}

	for i, it := range result.Itineraries {
		title := it.Offer.Title
		if len(title) > width-40 && width > 46 {
			title = title[:width-43] + "..."
		}
		fmt.Printf("%d. %-*s %8.2f %s  score %.4f\n",
			i+1, width-40, title, it.Price.Total, it.Price.Currency, it.Score)

		decision := wait.Sprintf("wait (%s)", it.BuyReason)
		if it.BuyNow {
			decision = buy.Sprintf("buy now (%s)", it.BuyReason)
		}
		line := fmt.Sprintf("   %s · %s", it.Offer.Provider, decision)
		if it.DistanceKm > 0 {
			line += fmt.Sprintf(" · %.0f km, %.2f kg CO2 pp", it.DistanceKm, it.CO2KgPp)
		}
		if it.Forecast != nil {
			line += fmt.Sprintf(" · %s %.1f°C", it.Forecast.Desc, it.Forecast.TempC)
		}
		fmt.Println(line)
	}

	if len(result.Dining) > 0 {
		fmt.Println(strings.Repeat("─", width))
		header.Println("Dining nearby")
		for _, d := range result.Dining {
			fmt.Printf("   %-30s %-4s ~%.2f pp, %dm away\n", d.Name, d.PriceTier, d.EstPP, d.DistanceM)
		}
	}
}
