package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/services"
)

func writePlans(w io.Writer, plans []domain.RoutePlan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, p := range plans {
		route := make([]string, 0, len(p.Stops)+1)
		route = append(route, strconv.Itoa(domain.DepotIndex))
		for _, s := range p.Stops {
			route = append(route, strconv.Itoa(s.CustomerIndex))
		}

		fmt.Fprintf(tw, "vehicle %d\t%s\n", p.VehicleID, p.TerminalReason)
		fmt.Fprintf(tw, "  route\t%s\n", strings.Join(route, " -> "))
		fmt.Fprintf(tw, "  distance\t%.2f km\n", p.TotalDistance)
		fmt.Fprintf(tw, "  elapsed\t%.2f h\n", p.TotalHours)
		fmt.Fprintf(tw, "  remaining load\t%.2f\n", p.RemainingLoad)
		fmt.Fprintf(tw, "  late stops\t%d\n", p.LateStops())
		fmt.Fprintf(tw, "  return\t%.3f\n", p.TotalReward)

		fmt.Fprintln(tw, "  #\tcustomer\tarrive\tdepart\tdemand\tlate")
		for i, s := range p.Stops {
			fmt.Fprintf(tw, "  %d\t%d %s\t%.2f\t%.2f\t%.1f\t%t\n",
				i+1, s.CustomerIndex, s.Name, s.ArriveAt, s.DepartAt, s.Demand, s.Late)
		}
	}

	return tw.Flush()
}

func writeStats(w io.Writer, policy string, s services.BatchStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "policy\t%s\n", policy)
	fmt.Fprintf(tw, "episodes\t%d\n", s.Episodes)
	fmt.Fprintf(tw, "return\t%.3f ± %.3f (min %.3f, max %.3f)\n", s.MeanReturn, s.StdReturn, s.MinReturn, s.MaxReturn)
	fmt.Fprintf(tw, "distance\t%.2f km\n", s.MeanDistance)
	fmt.Fprintf(tw, "elapsed\t%.2f h\n", s.MeanHours)
	fmt.Fprintf(tw, "steps\t%.2f\n", s.MeanSteps)
	fmt.Fprintf(tw, "late stops\t%.2f\n", s.MeanLateStops)
	fmt.Fprintf(tw, "completion rate\t%.1f%%\n", s.CompletionRate*100)
	return tw.Flush()
}
