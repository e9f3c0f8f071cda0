package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}
	WebSocket struct {
		Port int
	}
	Services struct {
		RideServicePort           int
		DriverLocationServicePort int
		AdminServicePort          int
	}
	JWT struct {
		SecretKey string `yaml:"secret_key"`
	}
}

// LoadFromFile reads a YAML config, fills defaults, and validates it.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func defaultStr(field *string, v string) {
	if *field == "" {
		*field = v
	}
}

func defaultInt(field *int, v int) {
	if *field == 0 {
		*field = v
	}
}

func (c *Config) fillDefaults() {
	defaultStr(&c.Database.Host, "localhost")
	defaultInt(&c.Database.Port, 5432)
	defaultStr(&c.RabbitMQ.Host, "localhost")
	defaultInt(&c.RabbitMQ.Port, 5672)
	defaultStr(&c.Redis.Host, "localhost")
	defaultInt(&c.Redis.Port, 6379)
	defaultInt(&c.WebSocket.Port, 8080)
	defaultInt(&c.Services.RideServicePort, 3000)
	defaultInt(&c.Services.DriverLocationServicePort, 3001)
	defaultInt(&c.Services.AdminServicePort, 3004)

	// a missing secret gets a random one; tokens then die with the process,
	// which is the right failure mode for a misconfigured deployment
	if c.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		c.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

func (c *Config) validate() error {
	var problems []string

	checkPort := func(name string, p int) {
		if p <= 0 || p > 65535 {
			problems = append(problems, name+" must be in 1..65535")
		}
	}
	checkSet := func(name, v string) {
		if v == "" {
			problems = append(problems, name+" is required")
		}
	}

	checkPort("database.port", c.Database.Port)
	checkSet("database.user", c.Database.User)
	checkSet("database.password", c.Database.Password)
	checkSet("database.name", c.Database.Name)

	checkPort("rabbitmq.port", c.RabbitMQ.Port)
	checkSet("rabbitmq.user", c.RabbitMQ.User)
	checkSet("rabbitmq.password", c.RabbitMQ.Password)

	checkPort("redis.port", c.Redis.Port)
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		problems = append(problems, "redis.db must be in 0..15")
	}

	checkPort("websocket.port", c.WebSocket.Port)
	checkPort("services.ride_service", c.Services.RideServicePort)
	checkPort("services.driver_location_service", c.Services.DriverLocationServicePort)
	checkPort("services.admin_service", c.Services.AdminServicePort)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
