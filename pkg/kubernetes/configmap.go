package kubernetes

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// GetConfigMapData returns the data of a ConfigMap.
// A missing ConfigMap yields a nil map and no error.
func GetConfigMapData(ctx context.Context, client kubernetes.Interface, namespace, name string) (map[string]string, error) {
	cm, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %v", namespace, name, err)
	}
	return cm.Data, nil
}

// ApplyConfigMapData replaces the data of a ConfigMap, creating it if it does not exist yet.
func ApplyConfigMapData(ctx context.Context, client kubernetes.Interface, namespace, name string, data map[string]string) error {
	configMaps := client.CoreV1().ConfigMaps(namespace)

	cm, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: namespace,
				Labels:    map[string]string{"app.kubernetes.io/managed-by": "after-hours"},
			},
			Data: data,
		}
		_, err = configMaps.Create(ctx, cm, metav1.CreateOptions{})
		if err != nil && !k8serrors.IsAlreadyExists(err) {
			return fmt.Errorf("failed to create ConfigMap %s/%s: %v", namespace, name, err)
		}
		if err == nil {
			return nil
		}
		// Lost a creation race, fall through to update the winner's copy.
		cm, err = configMaps.Get(ctx, name, metav1.GetOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s/%s: %v", namespace, name, err)
	}

	cm.Data = data
	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %v", namespace, name, err)
	}
	return nil
}
