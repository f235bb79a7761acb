package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/haatos/pipeline-composer/internal/util"
)

var Config *Configuration

type HoursDuration time.Duration

func NewHoursDuration(hours int64) HoursDuration {
	return HoursDuration(time.Duration(hours) * time.Hour)
}

func (hd HoursDuration) MarshalJSON() ([]byte, error) {
	hours := float64(time.Duration(hd)) / float64(time.Hour)
	return json.Marshal(hours)
}

func (hd *HoursDuration) UnmarshalJSON(data []byte) error {
	var hours float64
	if err := json.Unmarshal(data, &hours); err != nil {
		return err
	}
	*hd = HoursDuration(hours * float64(time.Hour))
	return nil
}

type Configuration struct {
	// RenderRetentionHours is how long rendered documents of stored
	// compositions are kept.
	RenderRetentionHours HoursDuration `json:"render_retention_hours"`
	CleanupIntervalHours HoursDuration `json:"cleanup_interval_hours"`
	// RateLimit is the number of API requests per second allowed per client.
	RateLimit float64 `json:"rate_limit"`
	// Variables resolve predefined CI variables for renders served by the
	// API. Variables that are not listed render as ${NAME}.
	Variables map[string]string `json:"variables"`
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		RenderRetentionHours: NewHoursDuration(30 * 24),
		CleanupIntervalHours: NewHoursDuration(1),
		RateLimit:            10,
		Variables:            map[string]string{},
	}
}

// InitializeConfiguration reads the configuration file at path, writing the
// default configuration to it first if it does not exist.
func InitializeConfiguration(path string) error {
	exists, err := util.PathExists(path)
	if err != nil {
		return err
	}
	if !exists {
		Config = DefaultConfiguration()
		return UpdateConfiguration(path, Config)
	}

	configBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	config := DefaultConfiguration()
	if err := json.Unmarshal(configBytes, config); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	Config = config
	return nil
}

func UpdateConfiguration(path string, config *Configuration) error {
	b, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return err
	}

	configFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer configFile.Close()

	if _, err := configFile.Write(b); err != nil {
		return err
	}

	Config = config

	return nil
}
