// Package config loads the simulator's runtime configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MQTTBrokerConfig addresses the broker and the VDA 5050 topic prefix.
type MQTTBrokerConfig struct {
	Host         string
	Port         string
	VDAInterface string
}

// VehicleConfig is the base identity shared across all spawned robots;
// the supervisor appends a per-robot suffix to SerialNumber.
type VehicleConfig struct {
	Manufacturer   string
	SerialNumber   string
	VDAVersion     string
	VDAFullVersion string
}

// Settings are the simulation tunables shared by every spawned robot.
type Settings struct {
	ActionTime              float64
	Speed                   float64
	RobotCount              int
	StateFrequencyHz        int
	VisualizationFrequencyHz int
	MapID                   string
}

// StatusAPI configures the read-only HTTP status surface.
type StatusAPI struct {
	ListenAddr string
}

// Config is the simulator's full runtime configuration.
type Config struct {
	MQTTBroker MQTTBrokerConfig
	Vehicle    VehicleConfig
	Settings   Settings
	StatusAPI  StatusAPI
	LogLevel   string
}

// Load reads configuration from the environment, loading a .env file
// first if one is present. Missing keys fall back to defaults suited
// to a local broker and a single simulated robot.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env file is not an error; environment variables may be set directly.
	}

	actionTime, _ := strconv.ParseFloat(getEnv("SETTINGS_ACTION_TIME", "5"), 64)
	speed, _ := strconv.ParseFloat(getEnv("SETTINGS_SPEED", "0.1"), 64)
	robotCount, _ := strconv.Atoi(getEnv("SETTINGS_ROBOT_COUNT", "1"))
	stateFrequency, _ := strconv.Atoi(getEnv("SETTINGS_STATE_FREQUENCY", "1"))
	visualizationFrequency, _ := strconv.Atoi(getEnv("SETTINGS_VISUALIZATION_FREQUENCY", "5"))

	return &Config{
		MQTTBroker: MQTTBrokerConfig{
			Host:         getEnv("MQTT_BROKER_HOST", "localhost"),
			Port:         getEnv("MQTT_BROKER_PORT", "1883"),
			VDAInterface: getEnv("MQTT_BROKER_VDA_INTERFACE", "uagv"),
		},
		Vehicle: VehicleConfig{
			Manufacturer:   getEnv("VEHICLE_MANUFACTURER", "TEST"),
			SerialNumber:   getEnv("VEHICLE_SERIAL_NUMBER", "AGV"),
			VDAVersion:     getEnv("VEHICLE_VDA_VERSION", "v2"),
			VDAFullVersion: getEnv("VEHICLE_VDA_FULL_VERSION", "2.0.0"),
		},
		Settings: Settings{
			ActionTime:              actionTime,
			Speed:                   speed,
			RobotCount:              robotCount,
			StateFrequencyHz:        stateFrequency,
			VisualizationFrequencyHz: visualizationFrequency,
			MapID:                   getEnv("SETTINGS_MAP_ID", "map_1"),
		},
		StatusAPI: StatusAPI{
			ListenAddr: getEnv("STATUS_API_LISTEN_ADDR", ":8080"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
