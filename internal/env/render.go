package env

import (
	"fmt"
	"io"
	"strings"
)

// Render writes a human-readable snapshot of the episode to w.
func (e *Environment) Render(w io.Writer) error {
	if e.state == StateUninitialized {
		_, err := fmt.Fprintln(w, "environment not reset")
		return err
	}

	var b strings.Builder
	cur := e.customers[e.current]

	fmt.Fprintf(&b, "episode %s [%s]", e.episodeID, e.state)
	if e.terminalReason != "" {
		fmt.Fprintf(&b, " (%s)", e.terminalReason)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  at:        #%d %s (%.4f, %.4f)\n", cur.Index, cur.Name, cur.Location.Lat, cur.Location.Lon)
	fmt.Fprintf(&b, "  capacity:  %.2f / %.2f\n", e.remaining, e.maxCapacity)
	fmt.Fprintf(&b, "  elapsed:   %.3fh\n", e.elapsed)
	fmt.Fprintf(&b, "  distance:  %.3fkm\n", e.totalDistance)
	fmt.Fprintf(&b, "  steps:     %d\n", e.steps)
	fmt.Fprintf(&b, "  return:    %.3f\n", e.episodeReturn)
	fmt.Fprintf(&b, "  visited:   %d/%d %v\n", len(e.visited), len(e.customers)-1, e.Visited())
	fmt.Fprintf(&b, "  route:     %s\n", formatRoute(e.route))

	_, err := io.WriteString(w, b.String())
	return err
}

func formatRoute(route []int) string {
	parts := make([]string, 0, len(route)+2)
	parts = append(parts, "0")
	for _, i := range route {
		parts = append(parts, fmt.Sprint(i))
	}
	return strings.Join(parts, " -> ")
}
