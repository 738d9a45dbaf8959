package settings

import (
	"context"
	"fmt"

	"k8s.io/client-go/kubernetes"

	"github.com/kezhenxu94/after-hours/pkg/config"
)

// Backend persists the roaming settings document.
type Backend interface {
	// Load returns every stored key. A document that was never saved loads as an empty map.
	Load(ctx context.Context) (map[string]string, error)

	// Save replaces the stored document with values.
	Save(ctx context.Context, values map[string]string) error
}

// NewBackend creates the settings backend selected by the store configuration.
// client is only used by the configmap backend and may be nil otherwise.
func NewBackend(ctx context.Context, store config.StoreConfig, client kubernetes.Interface) (Backend, error) {
	switch store.Kind {
	case config.StoreKindMemory:
		return NewMemoryBackend(nil), nil
	case config.StoreKindFile:
		return NewFileBackend(store.File.Path), nil
	case config.StoreKindConfigMap:
		if client == nil {
			return nil, fmt.Errorf("configmap settings backend requires a Kubernetes client")
		}
		return NewConfigMapBackend(client, store.ConfigMap.Namespace, store.ConfigMap.Name), nil
	case config.StoreKindS3:
		return NewS3Backend(ctx, *store.S3)
	default:
		return nil, &ErrUnsupportedBackend{Kind: store.Kind}
	}
}

// stringify flattens decoded YAML or JSON scalars into their string form.
func stringify(raw map[string]interface{}) map[string]string {
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values
}
