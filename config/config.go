// config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

var (
	Port          string
	MongoURI      string
	DatabaseName  string
	JWTKey        []byte
	JWTExpiration time.Duration

	// Max accepted upload size for document files.
	MaxUploadBytes int64

	// How often the document-expiry sweep runs. Production default is daily.
	ExpirySweepInterval time.Duration

	// Optional YAML file overriding the built-in required-document rules.
	ComplianceRulesPath string

	// Optional demo enrollment code accepted by the mobile enroll endpoint.
	EnrollDemoCode string
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	DatabaseName = os.Getenv("MONGO_DB")
	if DatabaseName == "" {
		DatabaseName = "trelhub"
	}

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}

	expireStr := os.Getenv("JWT_EXPIRE")
	dur := 24 * time.Hour
	if expireStr != "" {
		if expireStr == "7d" {
			dur = 7 * 24 * time.Hour
		} else {
			var err error
			dur, err = time.ParseDuration(expireStr)
			if err != nil {
				log.Printf("Invalid JWT_EXPIRE: %s, using 24h", expireStr)
				dur = 24 * time.Hour
			}
		}
	}
	JWTExpiration = dur

	MaxUploadBytes = 10 << 20 // 10MB, same limit the upload form enforces
	if s := os.Getenv("MAX_UPLOAD_BYTES"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			MaxUploadBytes = n
		} else {
			log.Printf("Invalid MAX_UPLOAD_BYTES: %s, using default", s)
		}
	}

	ExpirySweepInterval = 24 * time.Hour
	if s := os.Getenv("EXPIRY_SWEEP_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			ExpirySweepInterval = d
		} else {
			log.Printf("Invalid EXPIRY_SWEEP_INTERVAL: %s, using 24h", s)
		}
	}

	ComplianceRulesPath = os.Getenv("COMPLIANCE_RULES_FILE")
	EnrollDemoCode = os.Getenv("ENROLL_DEMO_CODE")
}
