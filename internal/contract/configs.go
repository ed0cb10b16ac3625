package contract

import (
	"fmt"
	"os"
	"time"

	"github.com/leoyyy3/mericoComment/schema"
)

// Default values for configuration.
const (
	DefaultTimeoutSeconds   = 30
	DefaultRetryTimes       = 3
	DefaultRetryDelaySecs   = 2.0
	DefaultBatchDelaySecs   = 0.5
	DefaultPageSize         = 100
	DefaultTopN             = 20
	DefaultScheduleHour     = 7
	DefaultScheduleMinute   = 0
	DefaultServerHost       = "0.0.0.0"
	DefaultServerPort       = 8080
	DefaultOutputDir        = "output"
	DefaultLogDir           = "log"
	DefaultLLMModel         = "gemini-2.0-flash"
	DefaultTAPDBaseURL      = "https://www.tapd.cn/api/devops/source_code"
	DefaultTAPDEntityType   = "story"
	DefaultTAPDScmType      = "gitlab"
	DefaultWeeklyReportsDir = "weekly_reports"
)

// DateTimeFormat is the default date time representation in reports.
const DateTimeFormat = "2006-01-02 15:04:05"

// TimestampFormat is used in generated artifact file names.
const TimestampFormat = "20060102_150405"

// ConfigRawInput holds the raw, unvalidated configuration from all
// sources (file, env, flags). Viper unmarshals into this struct; the
// nesting mirrors the JSON config file layout.
type ConfigRawInput struct {
	Env string `mapstructure:"env"`

	Server struct {
		Host  string `mapstructure:"host"`
		Port  int    `mapstructure:"port"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`

	Merico struct {
		APIURL          string   `mapstructure:"api_url"`
		DuplicateURL    string   `mapstructure:"duplicate_url"`
		Token           string   `mapstructure:"token"`
		RepoIDsFile     string   `mapstructure:"repo_ids_file"`
		RepoNamesFile   string   `mapstructure:"repo_names_file"`
		FrequentAuthors []string `mapstructure:"frequent_authors"`
		MaxProjects     int      `mapstructure:"max_projects"`
	} `mapstructure:"merico"`

	LLM struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"llm"`

	TAPD struct {
		BaseURL string            `mapstructure:"base_url"`
		Cookies map[string]string `mapstructure:"cookies"`
	} `mapstructure:"tapd"`

	Request struct {
		TimeoutSeconds int      `mapstructure:"timeout"`
		RetryTimes     int      `mapstructure:"retry_times"`
		RetryDelaySecs *float64 `mapstructure:"retry_delay"`
		BatchDelaySecs *float64 `mapstructure:"batch_delay"`
		PageSize       int      `mapstructure:"page_size"`
	} `mapstructure:"request"`

	Output struct {
		OutputDir      string `mapstructure:"output_dir"`
		LogDir         string `mapstructure:"log_dir"`
		SaveRaw        bool   `mapstructure:"save_raw"`
		SaveClassified bool   `mapstructure:"save_classified"`
		DetailExport   bool   `mapstructure:"detail"`
		PrettyPrint    bool   `mapstructure:"pretty_print"`
		TopN           int    `mapstructure:"top_n"`
		Format         string `mapstructure:"format"`
		Width          int    `mapstructure:"width"`
		Color          bool   `mapstructure:"color"`
	} `mapstructure:"output"`

	Schedule struct {
		Enabled bool `mapstructure:"enabled"`
		Hour    int  `mapstructure:"hour"`
		Minute  int  `mapstructure:"minute"`
	} `mapstructure:"schedule"`
}

// Config is the final, validated runtime configuration.
type Config struct {
	Env string

	ServerHost  string
	ServerPort  int
	ServerDebug bool

	MericoAPIURL       string
	MericoDuplicateURL string
	MericoToken        string
	RepoIDsFile        string
	RepoNamesFile      string
	FrequentAuthors    []string
	MaxProjects        int // 0 means no cap

	LLMAPIKey string
	LLMModel  string

	TAPDBaseURL string
	TAPDCookies map[string]string

	Timeout    time.Duration
	RetryTimes int
	RetryDelay time.Duration
	BatchDelay time.Duration
	PageSize   int

	OutputDir      string
	LogDir         string
	SaveRaw        bool
	SaveClassified bool
	DetailExport   bool
	PrettyPrint    bool
	TopN           int
	Output         schema.OutputMode
	Width          int // Terminal width override (0 = auto-detect)
	UseColors      bool
	Quiet          bool // Suppress console rendering; artifacts only.

	ScheduleEnabled bool
	ScheduleHour    int
	ScheduleMinute  int
}

// Clone returns a shallow copy of the config safe for per-request overrides.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// IsProduction reports whether the config targets the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProcessAndValidate converts raw input into a validated Config.
// Validation failures are ConfigError values, fatal at startup.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	cfg.Env = input.Env
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	cfg.ServerHost = orDefault(input.Server.Host, DefaultServerHost)
	cfg.ServerPort = orDefaultInt(input.Server.Port, DefaultServerPort)
	cfg.ServerDebug = input.Server.Debug

	cfg.MericoAPIURL = input.Merico.APIURL
	cfg.MericoDuplicateURL = input.Merico.DuplicateURL
	cfg.MericoToken = input.Merico.Token
	cfg.RepoIDsFile = orDefault(input.Merico.RepoIDsFile, "repoIds.json")
	cfg.RepoNamesFile = orDefault(input.Merico.RepoNamesFile, "repoId_repoName_list.json")
	cfg.FrequentAuthors = input.Merico.FrequentAuthors
	cfg.MaxProjects = input.Merico.MaxProjects
	if cfg.MaxProjects < 0 {
		return &ConfigError{Field: "merico.max_projects", Reason: "must not be negative"}
	}

	cfg.LLMAPIKey = input.LLM.APIKey
	cfg.LLMModel = orDefault(input.LLM.Model, DefaultLLMModel)

	cfg.TAPDBaseURL = orDefault(input.TAPD.BaseURL, DefaultTAPDBaseURL)
	cfg.TAPDCookies = input.TAPD.Cookies

	cfg.Timeout = secondsOrDefault(float64(input.Request.TimeoutSeconds), DefaultTimeoutSeconds)
	cfg.RetryTimes = orDefaultInt(input.Request.RetryTimes, DefaultRetryTimes)
	if cfg.RetryTimes < 1 {
		return &ConfigError{Field: "request.retry_times", Reason: "must be at least 1"}
	}
	cfg.RetryDelay = secondsOrZero(input.Request.RetryDelaySecs, DefaultRetryDelaySecs)
	cfg.BatchDelay = secondsOrZero(input.Request.BatchDelaySecs, DefaultBatchDelaySecs)
	cfg.PageSize = orDefaultInt(input.Request.PageSize, DefaultPageSize)

	cfg.OutputDir = orDefault(input.Output.OutputDir, DefaultOutputDir)
	cfg.LogDir = orDefault(input.Output.LogDir, DefaultLogDir)
	cfg.SaveRaw = input.Output.SaveRaw
	cfg.SaveClassified = input.Output.SaveClassified
	cfg.DetailExport = input.Output.DetailExport
	cfg.PrettyPrint = input.Output.PrettyPrint
	cfg.TopN = orDefaultInt(input.Output.TopN, DefaultTopN)
	cfg.Width = input.Output.Width
	cfg.UseColors = input.Output.Color

	switch out := schema.OutputMode(orDefault(input.Output.Format, string(schema.TextOut))); out {
	case schema.TextOut, schema.CSVOut, schema.JSONOut, schema.HTMLOut, schema.ParquetOut:
		cfg.Output = out
	default:
		return &ConfigError{Field: "output.format", Reason: fmt.Sprintf("unsupported output mode %q", out)}
	}

	cfg.ScheduleEnabled = input.Schedule.Enabled
	cfg.ScheduleHour = input.Schedule.Hour
	cfg.ScheduleMinute = input.Schedule.Minute
	if cfg.ScheduleHour < 0 || cfg.ScheduleHour > 23 {
		return &ConfigError{Field: "schedule.hour", Reason: "must be between 0 and 23"}
	}
	if cfg.ScheduleMinute < 0 || cfg.ScheduleMinute > 59 {
		return &ConfigError{Field: "schedule.minute", Reason: "must be between 0 and 59"}
	}

	for _, dir := range []string{cfg.OutputDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ConfigError{Field: "output", Reason: fmt.Sprintf("cannot create directory %s: %v", dir, err)}
		}
	}

	return nil
}

// RequireMericoCredentials ensures the listing analyses can authenticate.
func (c *Config) RequireMericoCredentials() error {
	if c.MericoToken == "" {
		return &ConfigError{Field: "merico.token", Reason: "token is required (set MERICO_TOKEN)"}
	}
	if c.MericoAPIURL == "" {
		return &ConfigError{Field: "merico.api_url", Reason: "listing API URL is required"}
	}
	return nil
}

// RequireDuplicateCredentials ensures the duplicate analysis can authenticate.
func (c *Config) RequireDuplicateCredentials() error {
	if c.MericoToken == "" {
		return &ConfigError{Field: "merico.token", Reason: "token is required (set MERICO_TOKEN)"}
	}
	if c.MericoDuplicateURL == "" {
		return &ConfigError{Field: "merico.duplicate_url", Reason: "duplicate API URL is required"}
	}
	return nil
}

// RequireLLMCredentials ensures the weekly generator can call the LLM API.
func (c *Config) RequireLLMCredentials() error {
	if c.LLMAPIKey == "" {
		return &ConfigError{Field: "llm.api_key", Reason: "API key is required (set GEMINI_API_KEY)"}
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orDefaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func secondsOrDefault(secs, fallback float64) time.Duration {
	if secs <= 0 {
		secs = fallback
	}
	return time.Duration(secs * float64(time.Second))
}

// secondsOrZero keeps an explicit zero: only absent or negative values
// fall back to the default, so delays can be disabled from config.
func secondsOrZero(secs *float64, fallback float64) time.Duration {
	if secs == nil || *secs < 0 {
		return time.Duration(fallback * float64(time.Second))
	}
	return time.Duration(*secs * float64(time.Second))
}
