package settings

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var Settings *AppSettings

func NewSettings() *AppSettings {
	settings := AppSettings{
		Port:         getEnvOrDefault("COMPOSER_PORT", ":8080"),
		DBDriver:     getEnvOrDefault("COMPOSER_DB_DRIVER", DriverSQLite),
		DBDSN:        getEnvOrDefault("COMPOSER_DB_DSN", "file:./composer.sqlite"),
		APIKey:       getEnvOrDefault("COMPOSER_API_KEY", ""),
		LogLevel:     getEnvOrDefault("COMPOSER_LOG_LEVEL", "info"),
		LogFormat:    getEnvOrDefault("COMPOSER_LOG_FORMAT", ""),
		MaxBodyBytes: getEnvIntOrDefault("COMPOSER_MAX_BODY_BYTES", 1<<20),
	}
	if !strings.HasPrefix(settings.Port, ":") {
		settings.Port = ":" + settings.Port
	}
	return &settings
}

func getEnvOrDefault(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return i
}

type AppSettings struct {
	Port string
	// DBDriver is the database/sql driver name, sqlite or pgx.
	DBDriver string
	DBDSN    string
	// APIKey protects the API when set.
	APIKey    string
	LogLevel  string
	LogFormat string
	// MaxBodyBytes limits the size of submitted definitions.
	MaxBodyBytes int64
}

// DSN returns the data source name for the configured driver. SQLite
// databases are opened read-only for readonly connections.
func (as *AppSettings) DSN(readonly bool) string {
	if as.DBDriver != DriverSQLite {
		return as.DBDSN
	}
	return as.SQLiteDbString(readonly)
}

func (as *AppSettings) SQLiteDbString(readonly bool) string {
	params := make(url.Values)
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("_synchronous", "NORMAL")
	params.Add("_cache_size", "-20000")
	params.Add("_foreign_keys", "ON")
	if readonly {
		params.Add("mode", "ro")
	} else {
		params.Add("_txlock", "IMMEDIATE")
		params.Add("mode", "rwc")
	}

	separator := "?"
	if strings.Contains(as.DBDSN, "?") {
		separator = "&"
	}
	return as.DBDSN + separator + params.Encode()
}

// ReadDotenv sets environment variables from the KEY=VALUE lines of the file
// at path. Lines starting with # are skipped.
func ReadDotenv(path string) error {
	re := regexp.MustCompile(`^[^0-9][A-Z0-9_]+=.+$`)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dotenv: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] != '#' && re.Match(line) {
			name, value, _ := strings.Cut(string(line), "=")
			name = strings.TrimSpace(name)
			value = strings.TrimSpace(value)
			value = strings.Trim(value, `"`)
			if err := os.Setenv(name, value); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
