package kubernetes

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientset creates a Kubernetes client from the local kubeconfig, falling
// back to the in-cluster service account.
func NewClientset() (*kubernetes.Clientset, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	config, err := kubeConfig.ClientConfig()
	if err != nil {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get Kubernetes config (neither local nor in-cluster): %v", err)
		}
	}

	return kubernetes.NewForConfig(config)
}

// InCluster reports whether the process runs inside a Kubernetes pod.
func InCluster() bool {
	_, err := rest.InClusterConfig()
	return err == nil
}
