package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/aggregation"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/importer"
)

type aggregateOptions struct {
	inputFlags
	out string
}

// NewAggregateCmd creates the dry-run command: it runs the aggregation
// engine without touching any concept store and prints a summary.
func NewAggregateCmd() *cobra.Command {
	opts := &aggregateOptions{}
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Run the aggregation only and print a summary",
		Example: `  conceptdb aggregate --gene-info gene_info.gz --orthologs gene_orthologs.gz -o table
  conceptdb aggregate --gene-info gene_info.gz --orthologs gene_orthologs.gz --out concepts.ndjson.gz
  conceptdb aggregate --gene-info s3://ncbi/gene_info.gz --out s3://exports/concepts.ndjson.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg, err := cliCtx.LoadConfig(opts.overrides(cmd.Flags()))
			if err != nil {
				return err
			}

			objects, err := openObjectStore(cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			opener := importer.NewSourceOpener(objects)

			var svcOpts []importer.Option
			if opts.out != "" {
				w, err := opener.Create(cmd.Context(), opts.out)
				if err != nil {
					return err
				}
				svcOpts = append(svcOpts, importer.WithSinks(importer.NewJSONSink(w, cliCtx.Logger)))
			}

			report, err := importer.NewService(cfg.Import, opener, cliCtx.Logger, svcOpts...).Run(cmd.Context())
			if err != nil {
				return err
			}
			return PrintResult(cmd, aggregateSummary{Concepts: report.Concepts, Stats: report.Stats})
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().StringVar(&opts.out, "out", "", "also write the concept stream as NDJSON (local path, .gz or s3:// URL)")
	return cmd
}

// overrides also routes --out through the config so an object URL opens the
// object store and is validated like import.json_output_path.
func (o *aggregateOptions) overrides(fs *pflag.FlagSet) map[string]interface{} {
	out := o.inputFlags.overrides(fs)
	if fs.Changed("out") {
		out["import.json_output_path"] = o.out
	}
	return out
}

type aggregateSummary struct {
	Concepts int               `json:"concepts"`
	Stats    aggregation.Stats `json:"stats"`
}

func (s aggregateSummary) String() string {
	st := s.Stats
	return fmt.Sprintf("%d genes, %d concepts: %d gene groups, %d top-orthology, %d HomoloGene, %d top-homology aggregates",
		st.Genes, s.Concepts, st.Clusters, st.TopOrthology, st.HomologyClusters, st.TopHomology)
}

func (s aggregateSummary) TableHeaders() []string {
	return []string{"METRIC", "COUNT"}
}

func (s aggregateSummary) TableRows() [][]string {
	st := s.Stats
	row := func(name string, n int) []string { return []string{name, strconv.Itoa(n)} }
	return [][]string{
		row("genes", st.Genes),
		row("ortholog groups", st.Groups),
		row("groups skipped", st.GroupsSkipped),
		row("gene-group clusters", st.Clusters),
		row("genes in several clusters", st.MultiClusterGenes),
		row("top-orthology aggregates", st.TopOrthology),
		row("HomoloGene clusters", st.HomologyClusters),
		row("HomoloGene clusters skipped", st.HomologyClustersSkipped),
		row("top-homology aggregates", st.TopHomology),
		row("top-homology extended", st.TopHomologyExtended),
		row("aggregates", st.Aggregates),
		row("concepts", s.Concepts),
	}
}

//Personal.AI order the ending
