package config

// Store backend kinds
const (
	StoreKindMemory    = "memory"
	StoreKindFile      = "file"
	StoreKindConfigMap = "configmap"
	StoreKindS3        = "s3"
)

// ServerConfig contains settings for the HTTP API used by the add-in
type ServerConfig struct {
	// Address is the listen address of the HTTP server
	Address string `json:"address,omitempty" default:":8080"`
}

// ScheduleConfig tunes how "outside business hours" is decided.
// Business hours themselves are per-user roaming settings, see DefaultsConfig.
type ScheduleConfig struct {
	// HolidaysAreOffHours also delays mail composed during business hours on a US holiday
	HolidaysAreOffHours bool `json:"holidaysAreOffHours,omitempty"`
}

// FileStoreConfig contains settings for the file settings backend
type FileStoreConfig struct {
	// Path is the YAML document holding the roaming settings
	Path string `json:"path,omitempty" default:"/var/lib/after-hours/settings.yaml"`
}

// ConfigMapStoreConfig contains settings for the Kubernetes ConfigMap settings backend
type ConfigMapStoreConfig struct {
	Namespace string `json:"namespace,omitempty" default:"default"`
	Name      string `json:"name,omitempty" default:"after-hours-settings"`
}

// S3StoreConfig contains settings for the S3 settings backend
type S3StoreConfig struct {
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	// Key is the object key of the JSON settings document
	Key string `json:"key,omitempty" default:"after-hours/settings.json"`
	// Endpoint is optional, for S3-compatible services
	Endpoint       string `json:"endpoint,omitempty"`
	ForcePathStyle bool   `json:"forcePathStyle,omitempty"`
	// Static credentials; the default AWS credential chain is used when empty
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
}

// StoreConfig selects and configures the roaming settings backend
type StoreConfig struct {
	// Kind is one of "memory", "file", "configmap" or "s3"
	Kind      string                `json:"kind,omitempty" default:"file"`
	File      *FileStoreConfig      `json:"file,omitempty" default:"{}"`
	ConfigMap *ConfigMapStoreConfig `json:"configMap,omitempty" default:"{}"`
	S3        *S3StoreConfig        `json:"s3,omitempty" default:"{}"`
}

// DefaultsConfig holds the values used when a roaming setting has never been saved.
// Pointers distinguish "unset" from false and zero.
type DefaultsConfig struct {
	DelaySendEnabled  *bool `json:"delaySendEnabled,omitempty" default:"true"`
	BusinessStartHour *int  `json:"businessStartHour,omitempty" default:"7"`
	BusinessEndHour   *int  `json:"businessEndHour,omitempty" default:"18"`
}

// Config represents the overall configuration for after-hours.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Schedule ScheduleConfig `json:"schedule"`
	Store    StoreConfig    `json:"store"`
	Defaults DefaultsConfig `json:"defaults"`
}
