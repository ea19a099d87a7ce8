package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"bptreedb/pkg/btree"
	"bptreedb/pkg/metrics"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Attach the index and expose its metrics over HTTP",
	Long: `Serve attaches the configured index device, wires an instrumented
handle, and exposes its counters at /metrics until interrupted.

Example:
  bptreectl serve --device ./index.img --config ./bptreectl.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := btree.Attach(cfg.DevicePath)
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		defer tr.Close()

		reg := prometheus.NewRegistry()
		tr.SetMetrics(metrics.New(reg))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok\n"))
		})

		slog.Info("serving metrics", "bind", cfg.Metrics.Bind, "device", cfg.DevicePath)
		return http.ListenAndServe(cfg.Metrics.Bind, mux)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
