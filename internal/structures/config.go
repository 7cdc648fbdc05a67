package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// UnitsConfig selects the display unit system. Internally everything is
// metric fixed point (mm, mbar, mliter, mkelvin).
type UnitsConfig struct {
	Length string `yaml:"length" validate:"in:meters,feet"`
	Volume string `yaml:"volume" validate:"in:liter,cuft"`
}

// PlannerConfig carries the dive-plan rendering preferences. SAC rates are
// mliter/min, partial pressures mbar, times minutes.
type PlannerConfig struct {
	VerbatimPlan       bool   `yaml:"verbatimPlan"`
	DisplayRuntime     bool   `yaml:"displayRuntime"`
	DisplayDuration    bool   `yaml:"displayDuration"`
	DisplayTransitions bool   `yaml:"displayTransitions"`
	DisplayVariations  bool   `yaml:"displayVariations"`
	DecoMode           string `yaml:"decoMode" validate:"in:buehlmann,vpmb,recreational"`
	BottomSAC          int    `yaml:"bottomSac" validate:"min:1"`
	DecoSAC            int    `yaml:"decoSac" validate:"min:1"`
	SACFactor          int    `yaml:"sacFactor" validate:"min:100"`
	ProblemSolvingTime int    `yaml:"problemSolvingTime" validate:"min:1"`
	BottomPO2          int    `yaml:"bottomPo2" validate:"min:1"`
	DecoPO2            int    `yaml:"decoPo2" validate:"min:1"`
}

// FilterConfig holds filtering preferences that live outside the filter state.
type FilterConfig struct {
	DisplayInvalidDives bool `yaml:"displayInvalidDives"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Version     string
	Debug       bool
	Path        string
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Units       UnitsConfig   `yaml:"units"`
	Planner     PlannerConfig `yaml:"planner"`
	Filter      FilterConfig  `yaml:"filter"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}
