package postgres

// DefaultSeparator is the column delimiter used by ImportCsv when none is configured.
const DefaultSeparator = ','

type Config struct {
	Connection Connection
}

// Connection holds the credentials of the single session opened by NewPostgres.
// Every field falls back to the bare variable name, so DB_NAME, DB_USER, ... work
// without a prefix.
type Connection struct {
	Host     string `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     string `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"DB_SSLMODE" default:"disable"`
}
