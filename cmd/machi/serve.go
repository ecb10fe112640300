package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/machi"
	"github.com/aretw0/machi/internal/cli"
	machihttp "github.com/aretw0/machi/pkg/adapters/http"
	"github.com/aretw0/machi/pkg/observability"
	"github.com/aretw0/machi/pkg/persistence/middleware"
	"github.com/aretw0/machi/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <flow.yaml>",
		Short: "Serve flow sessions over HTTP",
		Long: `Starts an HTTP server exposing sessions of the flow, its chart and
Prometheus metrics. Sessions are kept in memory, in files or in Redis,
encrypted when $MACHI_ENCRYPTION_KEY holds a hex or base64 AES-256 key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			storeCfg := cli.StoreConfig{}
			storeCfg.Kind, _ = cmd.Flags().GetString("store")
			storeCfg.Dir, _ = cmd.Flags().GetString("store-dir")
			storeCfg.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
			storeCfg.RedisPassword = os.Getenv("MACHI_REDIS_PASSWORD")
			storeCfg.RedisDB, _ = cmd.Flags().GetInt("redis-db")
			storeCfg.RedisTTL, _ = cmd.Flags().GetDuration("redis-ttl")
			if raw := os.Getenv("MACHI_ENCRYPTION_KEY"); raw != "" {
				key, err := middleware.ParseKey(raw)
				if err != nil {
					return fmt.Errorf("MACHI_ENCRYPTION_KEY: %w", err)
				}
				storeCfg.EncryptionKey = key
			}

			def, err := loadFlow(args[0])
			if err != nil {
				printProblems(cmd, err)
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := observability.NewMetrics(reg)
			if err != nil {
				return err
			}

			m, err := def.Machine(
				machi.WithLogger(logger),
				machi.WithLifecycleHooks(cli.MergeHooks(metrics.Hooks(), cli.DebugHooks(logger))),
			)
			if err != nil {
				return err
			}

			stores, err := cli.OpenStore(storeCfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			resolver := m.Resolver(nil)
			sessionOpts := []session.Option{session.WithLogger(logger)}
			if stores.Locker != nil {
				sessionOpts = append(sessionOpts, session.WithLocker(stores.Locker))
			}
			mgr := session.NewManager(stores.State, metrics.Resolver(m.Name(), resolver), sessionOpts...)

			handler := machihttp.NewHandler(mgr,
				machihttp.WithChart(m),
				machihttp.WithGatherer(reg),
				machihttp.WithLogger(logger),
			)
			srv := &http.Server{
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			ln, err := net.Listen("tcp", ":"+port)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("serving flow", "flow", m.Name(), "store", storeCfg.Kind)
			return cli.Serve(ctx, srv, ln, logger)
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().String("store", cli.StoreMemory, "Session store (memory, file, redis)")
	cmd.Flags().String("store-dir", "", "Directory of the file store")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address; the password is read from $MACHI_REDIS_PASSWORD")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Duration("redis-ttl", 0, "Expire Redis sessions after this long without updates")
	return cmd
}
