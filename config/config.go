package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters read from environment variables.
type Config struct {
	DBDriver     string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost       string `envconfig:"DB_HOST"`
	DBPort       int    `envconfig:"DB_PORT" default:"5432"`
	DBUser       string `envconfig:"DB_USER"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	DBName       string `envconfig:"DB_NAME"`
	DBSQLitePath string `envconfig:"DB_SQLITE_PATH" default:"g2p.db"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// External lookup services
	LiteratureProvider string        `envconfig:"LITERATURE_PROVIDER" default:"europepmc"`
	EuropePMCBaseURL   string        `envconfig:"EUROPEPMC_BASE_URL" default:"https://www.ebi.ac.uk/europepmc/webservices/rest"`
	PubMedBaseURL      string        `envconfig:"PUBMED_BASE_URL" default:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	PubMedAPIKey       string        `envconfig:"PUBMED_API_KEY"`
	OLSBaseURL         string        `envconfig:"OLS_BASE_URL" default:"https://www.ebi.ac.uk/ols4/api"`
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	RecordURLBase string `envconfig:"RECORD_URL_BASE" default:"https://www.ebi.ac.uk/gene2phenotype/lgd"`

	// Mined publication maintenance; an empty schedule disables the cron job.
	MinedPublicationCap int    `envconfig:"MINED_PUBLICATION_CAP" default:"100"`
	PruneSchedule       string `envconfig:"PRUNE_SCHEDULE" default:"0 3 * * 0"`
	PruneActorEmail     string `envconfig:"PRUNE_ACTOR_EMAIL"`

	// Optional S3 archive for import audit logs and reports
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket string `envconfig:"S3_BUCKET"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// ArchiveEnabled reports whether import artifacts should be uploaded to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// Validate checks settings that envconfig cannot express on its own.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		var missing []string
		if c.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required postgres settings: %s", strings.Join(missing, ", "))
		}
	case "sqlite":
		if c.DBSQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH must be set for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.LiteratureProvider {
	case "europepmc", "pubmed":
	default:
		return fmt.Errorf("unknown LITERATURE_PROVIDER %q", c.LiteratureProvider)
	}

	if c.MinedPublicationCap <= 0 {
		return fmt.Errorf("MINED_PUBLICATION_CAP must be positive, got %d", c.MinedPublicationCap)
	}
	return nil
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
