package smtpx

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig contains the configuration for one enumeration run. It is
// constructed once at startup and read-only thereafter; the engine never
// mutates it, so no locking is needed.
type RunConfig struct {
	// Target is the SMTP server to probe, as a hostname or IP address.
	// Required.
	Target string

	// Port is the TCP port of the SMTP service.
	// Default: 25
	Port int

	// Method is the enumeration command to use.
	// Default: MethodVRFY
	Method ProbeMethod

	// FromAddr is the MAIL FROM address, used only with MethodRCPT.
	// Default: "user@example.com"
	FromAddr string

	// Domain, when set, is appended to every username to form an email
	// address.
	Domain string

	// Workers is the number of concurrent probe workers.
	// Default: 5
	Workers int

	// Timeout bounds every individual network operation of an attempt:
	// connect, each read, and each write.
	// Default: 10s
	Timeout time.Duration

	// MaxRetries is how many extra attempts a candidate gets after an
	// ambiguous or connection-level failure. Each retry opens a fresh
	// connection.
	// Default: 2
	MaxRetries int

	// RetryDelay is the fixed pause between attempts of the same
	// candidate. It only delays that candidate's worker.
	// Default: 1s
	RetryDelay time.Duration

	// LocalName is the hostname sent in EHLO/HELO.
	// Default: "localhost"
	LocalName string
}

// DefaultConfig returns a RunConfig with the defaults of the tool.
func DefaultConfig() *RunConfig {
	return &RunConfig{
		Port:       25,
		Method:     MethodVRFY,
		FromAddr:   "user@example.com",
		Workers:    5,
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Second,
		LocalName:  "localhost",
	}
}

// Addr returns the dial address for the target.
func (c *RunConfig) Addr() string {
	return net.JoinHostPort(c.Target, strconv.Itoa(c.Port))
}

// Validate checks the configuration for a run.
func (c *RunConfig) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("smtpx: target cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("smtpx: invalid port: %d", c.Port)
	}
	switch c.Method {
	case MethodVRFY, MethodEXPN, MethodRCPT:
	default:
		return fmt.Errorf("smtpx: invalid probe method: %d", int(c.Method))
	}
	if c.Method == MethodRCPT && c.FromAddr == "" {
		return fmt.Errorf("smtpx: from-address required for RCPT method")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("smtpx: workers must be positive: %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("smtpx: timeout must be positive: %v", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("smtpx: max retries cannot be negative: %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("smtpx: retry delay cannot be negative: %v", c.RetryDelay)
	}
	return nil
}

// fileConfig is the YAML representation of a RunConfig. Durations are
// plain integers so config files stay shell-friendly.
type fileConfig struct {
	Target       string `yaml:"target"`
	Port         int    `yaml:"port"`
	Method       string `yaml:"method"`
	FromAddr     string `yaml:"from_addr"`
	Domain       string `yaml:"domain"`
	Workers      int    `yaml:"workers"`
	TimeoutSecs  int    `yaml:"timeout_seconds"`
	MaxRetries   *int   `yaml:"max_retries"`
	RetryDelayMS int    `yaml:"retry_delay_ms"`
	LocalName    string `yaml:"local_name"`
}

// LoadConfig reads a YAML run configuration, applying defaults for any
// field the file omits. An empty path returns the defaults.
func LoadConfig(path string) (*RunConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("smtpx: failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("smtpx: failed to parse config file: %w", err)
	}

	if fc.Target != "" {
		cfg.Target = fc.Target
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.Method != "" {
		method, err := ParseMethod(fc.Method)
		if err != nil {
			return nil, err
		}
		cfg.Method = method
	}
	if fc.FromAddr != "" {
		cfg.FromAddr = fc.FromAddr
	}
	if fc.Domain != "" {
		cfg.Domain = fc.Domain
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}
	if fc.TimeoutSecs != 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSecs) * time.Second
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.RetryDelayMS != 0 {
		cfg.RetryDelay = time.Duration(fc.RetryDelayMS) * time.Millisecond
	}
	if fc.LocalName != "" {
		cfg.LocalName = fc.LocalName
	}

	// Not validated here: the CLI may still fill in the target and other
	// fields from flags. NewEngine validates the final configuration.
	return cfg, nil
}
