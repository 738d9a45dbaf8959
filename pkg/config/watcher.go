package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"
)

const (
	// ConfigMapName is the ConfigMap watched for configuration updates when running in a cluster
	ConfigMapName = "after-hours-config"
	// ConfigMapKey is the data key of the ConfigMap holding the YAML configuration
	ConfigMapKey = "config.yaml"
)

// Watcher manages configuration changes from both files and Kubernetes ConfigMaps.
type Watcher struct {
	configPath string
	namespace  string
	client     kubernetes.Interface
	callbacks  []func(Config)
	mu         sync.RWMutex
}

// NewWatcher creates a new configuration watcher for the specified config path.
// client may be nil, in which case only the file is watched.
func NewWatcher(configPath string, client kubernetes.Interface) *Watcher {
	return &Watcher{
		configPath: configPath,
		namespace:  os.Getenv("NAMESPACE"),
		client:     client,
		callbacks:  make([]func(Config), 0),
	}
}

// OnConfigChange registers a callback function that will be called whenever the configuration changes.
func (w *Watcher) OnConfigChange(callback func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

func (w *Watcher) notifyCallbacks(cfg Config) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, callback := range w.callbacks {
		callback(cfg)
	}
}

// Start begins watching for configuration changes.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- w.watchFile(ctx)
	}()

	if w.client != nil {
		go func() {
			errCh <- w.watchConfigMap(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (w *Watcher) watchFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %v", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("Failed to close file watcher", "error", err)
		}
	}()

	// Watch the directory so that editors replacing the file are noticed too
	configDir := filepath.Dir(w.configPath)
	if err := watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != w.configPath || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			slog.Info("Config file changed, reloading", "path", w.configPath)
			cfg, err := ReadConfig(w.configPath)
			if err != nil {
				slog.Error("Failed to reload config file", "error", err)
				continue
			}
			w.notifyCallbacks(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) watchConfigMap(ctx context.Context) error {
	factory := informers.NewSharedInformerFactoryWithOptions(
		w.client,
		0,
		informers.WithNamespace(w.namespace),
	)

	informer := factory.Core().V1().ConfigMaps().Informer()
	_, err := informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		UpdateFunc: func(_, obj interface{}) {
			cm, ok := obj.(*corev1.ConfigMap)
			if !ok || cm.Name != ConfigMapName {
				return
			}
			slog.Info("ConfigMap updated, reloading config", "namespace", cm.Namespace)
			cfg, err := ReadConfigFromBytes([]byte(cm.Data[ConfigMapKey]))
			if err != nil {
				slog.Error("Failed to parse updated config", "error", err)
				return
			}
			w.notifyCallbacks(cfg)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add event handler: %v", err)
	}

	informer.Run(ctx.Done())
	return nil
}
