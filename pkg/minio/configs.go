package minio

import "time"

const (
	unknownSize              int64 = -1
	connectionValidationTime       = 10 * time.Second
)

// Config defines the configuration for the object storage source.
type Config struct {
	Connection ConnectionConfig
}

// ConnectionConfig contains MinIO server connection details.
type ConnectionConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"`                   // e.g. "localhost:9000"; empty disables object storage
	AccessKeyID     string `yaml:"access_key_id" envconfig:"MINIO_ACCESS_KEY_ID"`         // MinIO access key
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"MINIO_SECRET_ACCESS_KEY"` // MinIO secret key
	UseSSL          bool   `yaml:"use_ssl" envconfig:"MINIO_USE_SSL"`                     // https when true
	BucketName      string `yaml:"bucket_name" envconfig:"MINIO_BUCKET_NAME"`             // Bucket the CSV objects are read from
	Region          string `yaml:"region" envconfig:"MINIO_REGION"`                       // e.g. "us-east-1"
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool {
	return c.Connection.Endpoint != ""
}
