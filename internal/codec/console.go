package codec

import (
	"fmt"
	"io"
	"text/tabwriter"

	"nbrsnap/internal/domain"
)

// WriteConsole prints a per-device neighbor table
func WriteConsole(s *domain.Snapshot, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, d := range s.Devices {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		if !d.Succeeded() {
			kind, detail := domain.ErrorKindConnectivity, ""
			if d.Error != nil {
				kind, detail = d.Error.Kind, d.Error.Detail
			}
			fmt.Fprintf(tw, "%s (%s): FAILED [%s] %s\n", d.Hostname, d.Vendor, kind, detail)
			continue
		}

		fmt.Fprintf(tw, "%s (%s): %d neighbors\n", d.Hostname, d.Vendor, len(d.Neighbors))
		if len(d.Neighbors) == 0 {
			continue
		}
		fmt.Fprintln(tw, "  LOCAL INTERFACE\tNEIGHBOR\tNEIGHBOR INTERFACE")
		for _, n := range d.Neighbors {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", n.LocalInterface, n.Neighbor, n.NeighborInterface)
		}
	}

	sum := s.Summary()
	fmt.Fprintf(tw, "\n%d devices, %d failed, %d neighbors\n", sum.Devices, sum.Failed, sum.Neighbors)
	return tw.Flush()
}

// WriteSummaries prints one line per stored snapshot
func WriteSummaries(summaries []domain.SnapshotSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAKEN AT\tDEVICES\tFAILED\tNEIGHBORS")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", s.ID, s.TakenAt.Format("2006-01-02 15:04:05"), s.Devices, s.Failed, s.Neighbors)
	}
	return tw.Flush()
}
