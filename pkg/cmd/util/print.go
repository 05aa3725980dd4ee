package util

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mpapenbr/yutrace/pkg/model"
)

func PrintRanking(w io.Writer, ranking []model.Standing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tPOS\tSCORE\tMISSIONS\tBONUS\tFINISHED")
	for _, s := range ranking {
		finished := "-"
		if s.Finished {
			finished = fmt.Sprintf("#%d", s.FinishRank)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Rank, s.Name, s.Position, s.Score, s.Missions, s.BonusThrows, finished)
	}
	return tw.Flush()
}

// PrintLog prints entries as returned by RecentLog, most recent first.
func PrintLog(w io.Writer, entries []model.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Seq, e.At.Format("15:04:05"), e.Text)
	}
	return tw.Flush()
}
