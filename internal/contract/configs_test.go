package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoyyy3/mericoComment/schema"
)

// minimalInput returns a raw input whose directories live under a temp
// root, so validation never writes into the working tree.
func minimalInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	input := &ConfigRawInput{}
	input.Output.OutputDir = filepath.Join(t.TempDir(), "output")
	input.Output.LogDir = filepath.Join(t.TempDir(), "log")
	return input
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, minimalInput(t)))

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, DefaultServerHost, cfg.ServerHost)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultRetryTimes, cfg.RetryTimes)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultTopN, cfg.TopN)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultLLMModel, cfg.LLMModel)
	assert.Equal(t, DefaultTAPDBaseURL, cfg.TAPDBaseURL)
	assert.DirExists(t, cfg.OutputDir)
	assert.DirExists(t, cfg.LogDir)
}

func TestProcessAndValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*ConfigRawInput)
		field string
	}{
		{
			name:  "bad output format",
			mut:   func(in *ConfigRawInput) { in.Output.Format = "xml" },
			field: "output.format",
		},
		{
			name:  "negative max projects",
			mut:   func(in *ConfigRawInput) { in.Merico.MaxProjects = -1 },
			field: "merico.max_projects",
		},
		{
			name:  "retry times below one",
			mut:   func(in *ConfigRawInput) { in.Request.RetryTimes = -2 },
			field: "request.retry_times",
		},
		{
			name:  "schedule hour out of range",
			mut:   func(in *ConfigRawInput) { in.Schedule.Hour = 24 },
			field: "schedule.hour",
		},
		{
			name:  "schedule minute out of range",
			mut:   func(in *ConfigRawInput) { in.Schedule.Minute = 60 },
			field: "schedule.minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := minimalInput(t)
			tt.mut(input)

			err := ProcessAndValidate(&Config{}, input)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestProcessAndValidatePassesThrough(t *testing.T) {
	input := minimalInput(t)
	input.Env = "production"
	input.Merico.Token = "tok"
	input.Merico.FrequentAuthors = []string{"a@x.com"}
	delay := 0.25
	input.Request.RetryDelaySecs = &delay
	input.Output.Format = string(schema.CSVOut)
	input.Schedule.Enabled = true
	input.Schedule.Hour = 6
	input.Schedule.Minute = 30

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "tok", cfg.MericoToken)
	assert.Equal(t, []string{"a@x.com"}, cfg.FrequentAuthors)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.True(t, cfg.ScheduleEnabled)
	assert.Equal(t, 6, cfg.ScheduleHour)
	assert.Equal(t, 30, cfg.ScheduleMinute)
}

func TestProcessAndValidateZeroDelays(t *testing.T) {
	input := minimalInput(t)
	zero := 0.0
	input.Request.RetryDelaySecs = &zero
	input.Request.BatchDelaySecs = &zero

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, time.Duration(0), cfg.RetryDelay)
	assert.Equal(t, time.Duration(0), cfg.BatchDelay)

	negative := -1.0
	input.Request.RetryDelaySecs = &negative
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
}

func TestRequireCredentialHelpers(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireMericoCredentials())
	assert.Error(t, cfg.RequireDuplicateCredentials())
	assert.Error(t, cfg.RequireLLMCredentials())

	cfg.MericoToken = "tok"
	cfg.MericoAPIURL = "https://merico.example.com/api"
	assert.NoError(t, cfg.RequireMericoCredentials())
	assert.Error(t, cfg.RequireDuplicateCredentials())

	cfg.MericoDuplicateURL = "https://merico.example.com/dup"
	assert.NoError(t, cfg.RequireDuplicateCredentials())

	cfg.LLMAPIKey = "key"
	assert.NoError(t, cfg.RequireLLMCredentials())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{MaxProjects: 3, Output: schema.TextOut}

	clone := cfg.Clone()
	clone.MaxProjects = 99
	clone.Output = schema.JSONOut

	assert.Equal(t, 3, cfg.MaxProjects)
	assert.Equal(t, schema.TextOut, cfg.Output)
}
