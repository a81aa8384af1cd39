package config

import "time"

// Config represents the entire application configuration
type Config struct {
	Server       ServerConfig  `yaml:"server"`
	Logging      LoggingConfig `yaml:"logging"`
	DefaultProxy string        `yaml:"default_proxy"`
	Services     []Service     `yaml:"services"`
}

// ServerConfig contains global server settings
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	MaxSteps     int           `yaml:"max_steps,omitempty"` // rule evaluation budget per request, 0 = unlimited
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// Service represents a filtered service mounted under a path prefix
type Service struct {
	Name     string   `yaml:"name"`
	Addr     string   `yaml:"addr,omitempty"`
	Mount    string   `yaml:"mount"`
	Upstream Upstream `yaml:"upstream"`
	Filters  []Filter `yaml:"filters,omitempty"`
}

// Upstream is the backend requests are forwarded to when the filters let
// them through
type Upstream struct {
	Addr  string `yaml:"addr"`
	Proxy string `yaml:"proxy,omitempty"`
}

// Filter is one filtering step: a match expression plus the actions to run
// when it matches, and optionally when it does not
type Filter struct {
	Name      string       `yaml:"name"`
	When      string       `yaml:"when"`
	Then      []ActionSpec `yaml:"then"`
	Otherwise []ActionSpec `yaml:"otherwise,omitempty"`
}

// ActionSpec selects exactly one action to run
type ActionSpec struct {
	Respond    *RespondSpec `yaml:"respond,omitempty"`
	Forward    bool         `yaml:"forward,omitempty"`
	Log        *LogSpec     `yaml:"log,omitempty"`
	SetHeader  *HeaderSpec  `yaml:"set_header,omitempty"`
	DropCookie string       `yaml:"drop_cookie,omitempty"`
}

// RespondSpec configures a terminal status response
type RespondSpec struct {
	Status  int    `yaml:"status"`
	Message string `yaml:"message,omitempty"`
}

// LogSpec configures a log action
type LogSpec struct {
	Level   string `yaml:"level,omitempty"` // debug, info, warn, error; default info
	Message string `yaml:"message"`
}

// HeaderSpec configures a set-header action
type HeaderSpec struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}
