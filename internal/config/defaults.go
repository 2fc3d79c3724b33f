package config

const (
	defaultStagingDir            = "~/.local/share/carousel/staging"
	defaultPublicDir             = "~/.local/share/carousel/public"
	defaultLogDir                = "~/.local/share/carousel/logs"
	defaultAPIBind               = "127.0.0.1:8417"
	defaultConcurrency           = 10
	defaultBaseURL               = "http://localhost:8417"
	defaultUploadMaxAgeHours     = 24
	defaultAcquisitionRetries    = 3
	defaultAcquisitionRetrySleep = 5
	defaultRemoteBaseURL         = "https://graph.instagram.com/v21.0"
	defaultRemoteRequestTimeout  = 30
	defaultRemoteReadyTimeout    = 120
	defaultRemotePollInterval    = 3
	defaultLogFormat             = "text"
	defaultLogLevel              = "info"
)

// Default cron expressions: five fixed daily posting times.
var defaultCronExpressions = []string{
	"0 0 * * *",
	"0 4 * * *",
	"0 8 * * *",
	"0 12 * * *",
	"0 16 * * *",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			PublicDir:  defaultPublicDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Scheduler: Scheduler{
			CronExpressions: append([]string(nil), defaultCronExpressions...),
			Concurrency:     defaultConcurrency,
		},
		Publisher: Publisher{
			BaseURL:     defaultBaseURL,
			MaxAgeHours: defaultUploadMaxAgeHours,
		},
		Acquisition: Acquisition{
			Retries:           defaultAcquisitionRetries,
			RetrySleepSeconds: defaultAcquisitionRetrySleep,
		},
		Remote: Remote{
			BaseURL:               defaultRemoteBaseURL,
			RequestTimeoutSeconds: defaultRemoteRequestTimeout,
			ReadyTimeoutSeconds:   defaultRemoteReadyTimeout,
			PollIntervalSeconds:   defaultRemotePollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
