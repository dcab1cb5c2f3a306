package config

const (
	defaultStateDir         = "~/.local/share/shoebox"
	defaultLogDir           = "~/.local/share/shoebox/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60

	defaultMatcherPrefixLength = 43
	defaultMatcherSuffixMargin = 4

	defaultResolverExtractAttempts  = 3
	defaultResolverExtractBackoffMS = 500
	defaultResolverLedgerBatchSize  = 250

	defaultClusterTimeThresholdSeconds = 300
	defaultClusterDistanceThresholdKm  = 0.1

	defaultExiftoolBinary         = "exiftool"
	defaultExiftoolTimeoutSeconds = 60

	defaultWorkflowQueuePollInterval  = 2
	defaultWorkflowErrorRetryInterval = 10
	defaultWorkflowHeartbeatInterval  = 15
	defaultWorkflowHeartbeatTimeout   = 120

	defaultNotifyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Matcher: Matcher{
			PrefixLength: defaultMatcherPrefixLength,
			SuffixMargin: defaultMatcherSuffixMargin,
		},
		Resolver: Resolver{
			Workers:          0,
			ExtractAttempts:  defaultResolverExtractAttempts,
			ExtractBackoffMS: defaultResolverExtractBackoffMS,
			LedgerBatchSize:  defaultResolverLedgerBatchSize,
			KeepSidecars:     false,
			EmbedCanonical:   true,
		},
		Cluster: Cluster{
			TimeThresholdSeconds: defaultClusterTimeThresholdSeconds,
			DistanceThresholdKm:  defaultClusterDistanceThresholdKm,
		},
		Exiftool: Exiftool{
			Binary:         defaultExiftoolBinary,
			TimeoutSeconds: defaultExiftoolTimeoutSeconds,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultWorkflowQueuePollInterval,
			ErrorRetryInterval: defaultWorkflowErrorRetryInterval,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Runs:           true,
			Review:         true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
