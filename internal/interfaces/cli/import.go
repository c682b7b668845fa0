package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/application/importer"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/prometheus"
	statushttp "github.com/JULIELab/julielab-concept-db-manager-sub000/internal/interfaces/http"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/interfaces/http/handlers"
)

// openObjectStore is replaced in tests.
var openObjectStore = importer.OpenObjectStore

// inputFlags are the input locations shared by import and aggregate.
type inputFlags struct {
	geneInfo   string
	orthologs  string
	homologene string
	organisms  string
	batchSize  int
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.geneInfo, "gene-info", "", "NCBI gene_info file (local path, .gz or s3:// URL)")
	fs.StringVar(&f.orthologs, "orthologs", "", "NCBI gene_orthologs file; empty disables orthology aggregation")
	fs.StringVar(&f.homologene, "homologene", "", "HomoloGene homologene.data file")
	fs.StringVar(&f.organisms, "organisms", "", "file with one NCBI tax id per line restricting the genes")
	fs.IntVar(&f.batchSize, "batch-size", 0, "concepts per sink batch")
}

// overrides returns the config keys of the flags set on the command line.
func (f *inputFlags) overrides(fs *pflag.FlagSet) map[string]interface{} {
	out := make(map[string]interface{})
	set := func(flag, key string, val interface{}) {
		if fs.Changed(flag) {
			out[key] = val
		}
	}
	set("gene-info", "import.gene_info_path", f.geneInfo)
	set("orthologs", "import.ortholog_path", f.orthologs)
	set("homologene", "import.homologene_path", f.homologene)
	set("organisms", "import.organisms_path", f.organisms)
	set("batch-size", "import.batch_size", f.batchSize)
	return out
}

type importOptions struct {
	inputFlags
	sinks      []string
	jsonOut    string
	lock       bool
	statusAddr string
}

// NewImportCmd creates the command that runs a full import into the
// configured sinks.
func NewImportCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Aggregate the gene files and write all concepts into the configured sinks",
		Example: `  conceptdb import --gene-info gene_info.gz --orthologs gene_orthologs.gz --sinks neo4j,opensearch
  conceptdb import -c conceptdb.yaml --lock --status-addr :9464`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg, err := cliCtx.LoadConfig(opts.overrides(cmd.Flags()))
			if err != nil {
				return err
			}
			report, err := runImport(cmd.Context(), cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			return PrintResult(cmd, importSummary{report})
		},
	}

	fs := cmd.Flags()
	opts.register(fs)
	fs.StringSliceVar(&opts.sinks, "sinks", nil, "comma separated sinks: "+strings.Join(config.KnownSinks, ","))
	fs.StringVar(&opts.jsonOut, "json-out", "", "NDJSON output of the json sink (local path or s3:// URL)")
	fs.BoolVar(&opts.lock, "lock", false, "hold the Redis import lock during the run")
	fs.StringVar(&opts.statusAddr, "status-addr", "", "serve /healthz, /status and /metrics on this address")
	return cmd
}

func (o *importOptions) overrides(fs *pflag.FlagSet) map[string]interface{} {
	out := o.inputFlags.overrides(fs)
	if fs.Changed("sinks") {
		out["import.sinks"] = o.sinks
	}
	if fs.Changed("json-out") {
		out["import.json_output_path"] = o.jsonOut
	}
	if fs.Changed("lock") {
		out["import.lock"] = o.lock
	}
	if fs.Changed("status-addr") {
		out["metrics.enabled"] = o.statusAddr != ""
		out["metrics.addr"] = o.statusAddr
	}
	return out
}

// runImport wires the infrastructure named by cfg around one importer run.
func runImport(ctx context.Context, cfg *config.Config, log logging.Logger) (*importer.Report, error) {
	runID := uuid.NewString()
	log = log.With(logging.String("run_id", runID))

	progress := importer.NewProgress()
	svcOpts := []importer.Option{importer.WithRunID(runID), importer.WithProgress(progress)}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:       cfg.Metrics.Namespace,
			EnableGoMetrics: true,
		}, log)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, importer.WithMetrics(prometheus.NewImportMetrics(collector)))

		gin.SetMode(gin.ReleaseMode)
		router := statushttp.NewRouter(statushttp.RouterConfig{
			HealthHandler:    handlers.NewHealthHandler(Version),
			StatusHandler:    handlers.NewStatusHandler(progress),
			Logger:           log,
			MetricsCollector: collector,
		})
		srv := statushttp.NewServer(cfg.Metrics.Addr, router, log)
		if err := srv.Start(); err != nil {
			return nil, err
		}
		defer func() {
			if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn("status server shutdown failed", logging.Err(err))
			}
		}()
	}

	if cfg.Import.Lock {
		lock, closeLock, err := importer.OpenLock(ctx, cfg, runID, log)
		if err != nil {
			return nil, err
		}
		defer closeLock()
		svcOpts = append(svcOpts, importer.WithLock(lock))
	}

	objects, err := openObjectStore(cfg, log)
	if err != nil {
		return nil, err
	}
	opener := importer.NewSourceOpener(objects)

	sinks, err := importer.OpenSinks(ctx, cfg, opener, runID, log)
	if err != nil {
		return nil, err
	}
	svcOpts = append(svcOpts, importer.WithSinks(sinks...))

	return importer.NewService(cfg.Import, opener, log, svcOpts...).Run(ctx)
}

type importSummary struct {
	*importer.Report
}

func (s importSummary) String() string {
	return fmt.Sprintf("import %s: %d concepts (%d aggregates) written to %s in %d batches, took %s",
		s.RunID, s.Written, s.Stats.Aggregates, strings.Join(s.Sinks, ", "), s.Batches, s.Took.Round(time.Millisecond))
}

func (s importSummary) TableHeaders() []string {
	return []string{"RUN", "SINKS", "CONCEPTS", "AGGREGATES", "WRITTEN", "BATCHES", "TOOK"}
}

func (s importSummary) TableRows() [][]string {
	return [][]string{{
		s.RunID,
		strings.Join(s.Sinks, ","),
		strconv.Itoa(s.Concepts),
		strconv.Itoa(s.Stats.Aggregates),
		strconv.Itoa(s.Written),
		strconv.Itoa(s.Batches),
		s.Took.Round(time.Millisecond).String(),
	}}
}

//Personal.AI order the ending
