package config

import (
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the whole service configuration.
// Resolution order: YAML file (optional, CONFIG_FILE) first, then env vars
// override field by field. Cloud Run deployments use env only.
type Config struct {
	Port string `yaml:"port"`

	// Remote ERP API (Dolibarr)
	DolibarrBaseURL      string `yaml:"dolibarrBaseUrl"`
	DolibarrAPIKey       string `yaml:"dolibarrApiKey"`
	DolibarrAPIKeySecret string `yaml:"dolibarrApiKeySecret"` // Secret Manager secret id; wins over DolibarrAPIKey when resolvable

	// GCP
	GCPProjectID             string `yaml:"gcpProjectId"`
	FirestoreProjectID       string `yaml:"firestoreProjectId"`
	FirestoreCredentialsFile string `yaml:"firestoreCredentialsFile"`
	GCPCreds                 string `yaml:"-"` // GOOGLE_APPLICATION_CREDENTIALS
	FirebaseProjectID        string `yaml:"firebaseProjectId"`

	// Product photo fallback bucket (public GCS objects)
	PhotoBucket string `yaml:"photoBucket"`

	// Cart persistence backend: "firestore" (default), "postgres", "file"
	CartBackend string `yaml:"cartBackend"`

	// Postgres (when CartBackend == "postgres")
	DBHost     string `yaml:"dbHost"`
	DBPort     string `yaml:"dbPort"`
	DBUser     string `yaml:"dbUser"`
	DBPassword string `yaml:"dbPassword"`
	DBName     string `yaml:"dbName"`

	// Local file store (when CartBackend == "file"; dev only)
	CartStorePath string `yaml:"cartStorePath"`

	// Order confirmation mail
	SendGridAPIKey string `yaml:"sendgridApiKey"`
	SenderEmail    string `yaml:"senderEmail"`
}

// Load reads the optional YAML file, then applies env overrides.
func Load() *Config {
	cfg := &Config{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				log.Printf("[config] WARN: could not parse %s: %v (env only)", path, err)
			}
		} else {
			log.Printf("[config] WARN: could not read %s: %v (env only)", path, err)
		}
	}

	defaultProject := firstNonEmpty(
		os.Getenv("GCP_PROJECT_ID"),
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
		cfg.GCPProjectID,
	)

	overlay(&cfg.Port, "PORT", "8080")
	overlay(&cfg.DolibarrBaseURL, "DOLIBARR_BASE_URL", "")
	overlay(&cfg.DolibarrAPIKey, "DOLIBARR_API_KEY", "")
	overlay(&cfg.DolibarrAPIKeySecret, "DOLIBARR_API_KEY_SECRET", "")
	overlay(&cfg.GCPProjectID, "GCP_PROJECT_ID", defaultProject)
	overlay(&cfg.FirestoreProjectID, "FIRESTORE_PROJECT_ID", defaultProject)
	overlay(&cfg.FirestoreCredentialsFile, "FIRESTORE_CREDENTIALS_FILE", "")
	overlay(&cfg.FirebaseProjectID, "FIREBASE_PROJECT_ID", defaultProject)
	overlay(&cfg.PhotoBucket, "PHOTO_BUCKET", "")
	overlay(&cfg.CartBackend, "CART_BACKEND", "firestore")
	overlay(&cfg.DBHost, "DB_HOST", "")
	overlay(&cfg.DBPort, "DB_PORT", "5432")
	overlay(&cfg.DBUser, "DB_USER", "")
	overlay(&cfg.DBPassword, "DB_PASSWORD", "")
	overlay(&cfg.DBName, "DB_NAME", "")
	overlay(&cfg.CartStorePath, "CART_STORE_PATH", "carts.json")
	overlay(&cfg.SendGridAPIKey, "SENDGRID_API_KEY", "")
	overlay(&cfg.SenderEmail, "SENDER_EMAIL", "")

	cfg.GCPCreds = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	return cfg
}

// overlay applies env var if set, else keeps the file value, else default.
func overlay(dst *string, envKey, def string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = v
		return
	}
	if strings.TrimSpace(*dst) != "" {
		return
	}
	*dst = def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
