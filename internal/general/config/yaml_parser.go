package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseYAML reads the two-level section/key mapping used by config.yaml.
// It is deliberately not a general YAML parser: unknown sections and keys
// are errors, so a typoed config fails startup instead of silently running
// on defaults.
func parseYAML(r io.Reader, cfg *Config) error {
	setStr := func(dst *string) func(string) error {
		return func(v string) error {
			*dst = v
			return nil
		}
	}
	setInt := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}

	sections := map[string]map[string]func(string) error{
		"database": {
			"host":     setStr(&cfg.Database.Host),
			"port":     setInt(&cfg.Database.Port),
			"user":     setStr(&cfg.Database.User),
			"password": setStr(&cfg.Database.Password),
			"database": setStr(&cfg.Database.Name),
		},
		"rabbitmq": {
			"host":     setStr(&cfg.RabbitMQ.Host),
			"port":     setInt(&cfg.RabbitMQ.Port),
			"user":     setStr(&cfg.RabbitMQ.User),
			"password": setStr(&cfg.RabbitMQ.Password),
		},
		"redis": {
			"host":     setStr(&cfg.Redis.Host),
			"port":     setInt(&cfg.Redis.Port),
			"password": setStr(&cfg.Redis.Password),
			"db":       setInt(&cfg.Redis.DB),
		},
		"websocket": {
			"port": setInt(&cfg.WebSocket.Port),
		},
		"services": {
			"ride_service":            setInt(&cfg.Services.RideServicePort),
			"driver_location_service": setInt(&cfg.Services.DriverLocationServicePort),
			"admin_service":           setInt(&cfg.Services.AdminServicePort),
		},
		"jwt": {
			"secret_key": setStr(&cfg.JWT.SecretKey),
		},
	}

	scanner := bufio.NewScanner(r)
	var (
		lineNo  int
		current map[string]func(string) error
		curName string
		seen    = map[string]bool{}
	)

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// unindented lines open a section
		if line[0] != ' ' && line[0] != '\t' {
			name := strings.TrimSuffix(strings.TrimSpace(line), ":")
			sec, ok := sections[name]
			if !ok {
				return fmt.Errorf("line %d: unknown top-level key %q", lineNo, name)
			}
			if seen[name] {
				return fmt.Errorf("line %d: duplicate %q section", lineNo, name)
			}
			seen[name] = true
			current, curName = sec, name
			continue
		}

		if current == nil {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}

		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		set, ok := current[key]
		if !ok {
			return fmt.Errorf("line %d: unknown key in %s: %q", lineNo, curName, key)
		}
		if err := set(unquoteScalar(trim[colon+1:])); err != nil {
			return fmt.Errorf("line %d: %s.%s: %v", lineNo, curName, key, err)
		}
	}

	return scanner.Err()
}

// unquoteScalar trims whitespace and strips surrounding quotes, so values
// like jwt.secret_key do not keep their YAML quoting.
func unquoteScalar(s string) string {
	s = strings.TrimSpace(s)
	if n := len(s); n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			if unq, err := strconv.Unquote(s); err == nil {
				return unq
			}
			return s[1 : n-1]
		}
	}
	return s
}
