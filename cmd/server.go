package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vmforge/internal/config"
	"vmforge/internal/logging"
	"vmforge/internal/metrics"
	"vmforge/internal/provisioning"
	"vmforge/internal/resource"
	"vmforge/internal/server"
	"vmforge/internal/store"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the vmforge server",
	Long:  `Start the vmforge gRPC server. All settings are read from the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		logging.Logger().Info("Starting vmforge server")

		cfg, err := config.Load()
		if err != nil {
			logging.Logger().Fatal("Failed to load configuration", zap.Error(err))
		}

		logging.Logger().Info("Configuration loaded",
			zap.Int("port", cfg.Server.Port),
			zap.Int("metrics_port", cfg.Server.MetricsPort),
			zap.String("store_type", cfg.Store.Type),
			zap.Int("max_workers", cfg.Batch.MaxWorkers),
			zap.Int("prototypes", len(cfg.Prototypes)),
		)

		st, err := store.New(context.Background(), cfg.Store)
		if err != nil {
			logging.Logger().Fatal("Failed to open store", zap.Error(err))
		}
		defer st.Close()

		m := metrics.New(nil)
		svc := provisioning.NewService(st,
			provisioning.WithMetrics(m),
			provisioning.WithBatchWorkers(cfg.Batch.MaxWorkers),
		)

		for _, p := range cfg.Prototypes {
			if err := svc.RegisterPrototypeRecord(p.Name, resource.Record(p.Template)); err != nil {
				logging.Logger().Fatal("Failed to register prototype", zap.String("name", p.Name), zap.Error(err))
			}
		}

		if err := server.NewServer(svc, m).Start(cfg.Server); err != nil {
			logging.Logger().Fatal("Server failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
