package montecarlo

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/samber/lo"
)

// Summary writes the human-readable study report: overall figures,
// the per-vehicle table ordered by wins then finish rate, team
// figures and the DNF-reason breakdown.
func (s *StudyResult) Summary(w io.Writer) {
	name := s.ScenarioName
	if name == "" {
		name = "unnamed scenario"
	}
	fmt.Fprintf(w, "Monte Carlo study %s (%s)\n", s.ID, name)
	fmt.Fprintf(w, "Episodes: %d\n", s.Episodes)
	fmt.Fprintf(w, "Episode time: mean %.2fs  min %.2fs  max %.2fs\n",
		s.Overall.MeanTotalTime, s.Overall.MinTotalTime, s.Overall.MaxTotalTime)
	fmt.Fprintf(w, "Fired events: %d\n", s.Overall.TotalEvents)
	fmt.Fprintf(w, "Finishes: %d  DNFs: %d  DNF rate: %.3f\n\n",
		s.Overall.TotalFinishes, s.Overall.TotalDNFs, s.Overall.DNFRate)

	vehicles := make([]VehicleStats, len(s.Vehicles))
	copy(vehicles, s.Vehicles)
	sort.SliceStable(vehicles, func(i, j int) bool {
		if vehicles[i].Wins != vehicles[j].Wins {
			return vehicles[i].Wins > vehicles[j].Wins
		}
		return vehicles[i].FinishRate > vehicles[j].FinishRate
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VEHICLE\tTEAM\tWINS\tFINISHES\tDNFS\tFINISH RATE\tMEAN TIME\tMEAN POS\tMEAN LAPS")
	for _, v := range vehicles {
		fmt.Fprintf(tw, "%s (%s)\t%s\t%d\t%d\t%d\t%.3f\t%s\t%s\t%.1f\n",
			v.Name, v.VehicleID, v.Team,
			v.Wins, v.Finishes, v.DNFs, v.FinishRate,
			formatOpt(v.FinishTimeMean, "%.2fs"),
			formatOpt(v.MeanFinishPosition, "%.2f"),
			v.MeanLapCount)
	}
	tw.Flush()

	if len(s.Teams) > 0 {
		fmt.Fprintln(w, "\nTeams:")
		for _, t := range s.Teams {
			fmt.Fprintf(w, "  %s (%d cars): wins %d, finishes %d, dnfs %d, finish rate %.3f, mean time %s\n",
				t.Team, len(t.Vehicles), t.Wins, t.Finishes, t.DNFs, t.FinishRate,
				formatOpt(t.MeanFinishTime, "%.2fs"))
		}
	}

	if len(s.DNFReasons) > 0 {
		fmt.Fprintln(w, "\nDNF reasons:")
		for _, reason := range sortedKeys(s.DNFReasons) {
			fmt.Fprintf(w, "  %-16s %d\n", reason, s.DNFReasons[reason])
		}
	}
}

func formatOpt(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func sortedKeys(m map[string]int) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
