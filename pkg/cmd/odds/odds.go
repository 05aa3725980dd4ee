package odds

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/yutrace/pkg/config"
	"github.com/mpapenbr/yutrace/pkg/race/draw"
)

func NewOddsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odds",
		Short: "prints the throw outcome probabilities of the rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOdds(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&config.RulesFile,
		"rules",
		"",
		"yaml file with game rules")
	return cmd
}

func printOdds(out io.Writer) error {
	rules, err := config.LoadRules(config.RulesFile)
	if err != nil {
		return err
	}
	weights, err := rules.Weights()
	if err != nil {
		return err
	}
	// the source is never used, only the table is printed
	d, err := draw.New(draw.NewSeeded(1), draw.WithWeights(weights))
	if err != nil {
		return err
	}
	hundred := decimal.NewFromInt(100)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTCOME\tMOVE\tWEIGHT\tPERCENT\tEXTRA THROW")
	for _, o := range d.Table() {
		extra := ""
		if o.Outcome.GrantsExtraThrow() {
			extra = "yes"
		}
		fmt.Fprintf(tw, "%s\t%+d\t%d\t%s\t%s\n",
			o.Outcome, o.Outcome.Distance(), o.Weight,
			o.Probability.Mul(hundred).StringFixed(1), extra)
	}
	return tw.Flush()
}
