package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

// ConnectorConfig holds reachability and credentials for one external
// service. Owned by configuration; the engine only reads it.
type ConnectorConfig struct {
	BaseUrl string
	// Credential is a bearer token for lexoffice and an API token for
	// paperless. Encryption at rest is handled outside this process.
	Credential string
	Active     bool
	// Rate is the sustained outbound request rate in requests per second.
	// Zero means effectively unconstrained.
	Rate  float64
	Burst int
}

type RedisConfig struct {
	Addrs     []string
	Namespace string
}

type Config struct {
	HttpPort       int
	StorageType    StorageType
	RedisConfig    RedisConfig
	Paperless      ConnectorConfig
	Lexoffice      ConnectorConfig
	QueueCapacity  int
	RetryMaxTries  uint64
	ExecTimeoutSec int
	SyncCron       string
}
