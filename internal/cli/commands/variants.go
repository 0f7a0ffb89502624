package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/symtree/internal/cli/output"
	"github.com/leapstack-labs/symtree/pkg/variant"
)

// NewVariantsCommand creates the variants command.
func NewVariantsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "variants",
		Aliases: []string{"ops"},
		Short:   "List the node variants expressions are built from",
		Long: `List every registered node variant with its rendering symbol, arity,
and whether it counts toward non-arithmetic depth.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVariants(NewCommandContext(cmd))
		},
	}
}

func runVariants(c *CommandContext) error {
	r := c.Renderer
	all := variant.All()

	infos := make([]output.VariantInfo, len(all))
	for i, v := range all {
		infos[i] = output.VariantInfo{
			Name:          v.Name,
			Symbol:        v.Symbol,
			Arity:         v.Arity,
			NonArithmetic: v.NonArithmetic,
		}
	}

	if r.Structured() {
		return r.Data(infos)
	}

	titleCaser := cases.Title(language.English)
	rows := make([][]string, len(infos))
	for i, v := range infos {
		flag := "no"
		if v.NonArithmetic {
			flag = "yes"
		}
		rows[i] = []string{titleCaser.String(v.Name), v.Symbol, strconv.Itoa(v.Arity), flag}
	}

	r.Header(1, "Node Variants")
	r.Table([]string{"Variant", "Symbol", "Arity", "Non-arithmetic"}, rows)
	return nil
}
