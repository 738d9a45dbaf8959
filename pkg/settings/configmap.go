package settings

import (
	"context"
	"fmt"
	"maps"

	"k8s.io/client-go/kubernetes"

	pkgk8s "github.com/kezhenxu94/after-hours/pkg/kubernetes"
)

// ConfigMapBackend stores the settings document as the data of a Kubernetes ConfigMap.
type ConfigMapBackend struct {
	client    kubernetes.Interface
	namespace string
	name      string
}

// NewConfigMapBackend creates a ConfigMap backend. The ConfigMap is created on first save.
func NewConfigMapBackend(client kubernetes.Interface, namespace, name string) *ConfigMapBackend {
	return &ConfigMapBackend{
		client:    client,
		namespace: namespace,
		name:      name,
	}
}

func (b *ConfigMapBackend) Load(ctx context.Context) (map[string]string, error) {
	data, err := pkgk8s.GetConfigMapData(ctx, b.client, b.namespace, b.name)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(data))
	maps.Copy(values, data)
	return values, nil
}

func (b *ConfigMapBackend) Save(ctx context.Context, values map[string]string) error {
	return pkgk8s.ApplyConfigMapData(ctx, b.client, b.namespace, b.name, maps.Clone(values))
}

// String returns a string representation of the ConfigMapBackend
func (b *ConfigMapBackend) String() string {
	return fmt.Sprintf("ConfigMapBackend{namespace: %s, name: %s}", b.namespace, b.name)
}
