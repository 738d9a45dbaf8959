package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/client-go/kubernetes"

	"github.com/kezhenxu94/after-hours/pkg/config"
	"github.com/kezhenxu94/after-hours/pkg/controller"
	k8s "github.com/kezhenxu94/after-hours/pkg/kubernetes"
	"github.com/kezhenxu94/after-hours/pkg/server"
	"github.com/kezhenxu94/after-hours/pkg/settings"
)

var (
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "after-hours",
	Short: "Defers mail composed outside business hours to the next business day",
	Long: `After-Hours backs the Delay Send mail add-in. When a message is composed
outside the configured business hours, on a weekend, or on a US holiday, it
schedules delivery for the start of the next business day so that recipients
are not disturbed after hours.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		level := slog.LevelInfo
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
	RunE: run,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slog.Debug("Starting application", "config_file", path, "store", cfg.Store.Kind)

	var client kubernetes.Interface
	if k8s.InCluster() || cfg.Store.Kind == config.StoreKindConfigMap {
		clientset, err := k8s.NewClientset()
		if err != nil {
			return fmt.Errorf("failed to create Kubernetes client: %v", err)
		}
		client = clientset
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := newController(ctx, cfg, client)
	if err != nil {
		return err
	}

	// Set up config watcher
	watcher := config.NewWatcher(path, client)
	watcher.OnConfigChange(c.UpdateConfig)

	errGroup, ctx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		return watcher.Start(ctx)
	})

	errGroup.Go(func() error {
		return server.New(c).ListenAndServe(ctx, cfg.Server.Address)
	})

	return errGroup.Wait()
}

// loadConfig reads the configuration file named by --config. A missing file
// at the default location yields the built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path, err := filepath.Abs(configFile)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to resolve config path: %v", err)
	}

	cfg, err := config.ReadConfig(path)
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		slog.Debug("Config file not found, using defaults", "config_file", path)
		return config.Default(), path, nil
	}
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to read config: %v", err)
	}
	return cfg, path, nil
}

func newManager(ctx context.Context, cfg config.Config, client kubernetes.Interface) (*settings.Manager, error) {
	backend, err := settings.NewBackend(ctx, cfg.Store, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings backend: %v", err)
	}
	return settings.NewManager(backend, settings.DefaultsFromConfig(cfg.Defaults)), nil
}

func newController(ctx context.Context, cfg config.Config, client kubernetes.Interface) (*controller.DelayController, error) {
	manager, err := newManager(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	return controller.NewDelayController(manager, cfg), nil
}

// localClient returns a Kubernetes client only when the settings store needs one.
func localClient(cfg config.Config) (kubernetes.Interface, error) {
	if cfg.Store.Kind != config.StoreKindConfigMap {
		return nil, nil
	}
	clientset, err := k8s.NewClientset()
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %v", err)
	}
	return clientset, nil
}
