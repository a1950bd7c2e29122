package config

const (
	// Archive Defaults
	DefaultArchiveCDXAPIURL    = "https://web.archive.org/cdx/search/cdx"
	DefaultArchiveReplayURL    = "https://web.archive.org/web"
	DefaultArchiveQueryLimit   = 20000
	DefaultArchiveReductionCap = 1200
	DefaultArchiveUserAgent    = "Mozilla/5.0 (compatible; adstrace/1.0)"

	// Analysis Defaults
	DefaultSnapshotsPerYear        = 2
	DefaultBisectionMaxIterations  = 30
	DefaultExclusivityHighCount    = 8
	DefaultExclusivityMinDays      = 7
	DefaultExclusivityMinRun       = 2
	DefaultTruncationMinBytes      = 64
	DefaultTruncationRelativeRatio = 0.20

	// HTTP Client Defaults
	DefaultHTTPTimeoutSecs = 300
	DefaultMaxRetries      = 5
	DefaultBaseDelaySecs   = 1
	DefaultMaxDelaySecs    = 60

	// Runner Defaults
	DefaultStartDate        = "20200101"
	DefaultSleepMinMillis   = 120
	DefaultSleepMaxMillis   = 280
	DefaultRunlogSQLitePath = "database/runlog/runlog.db"

	// Storage Defaults
	DefaultStorageParquetBasePath = "database"

	// Reporter Defaults
	DefaultReporterOutputDir  = "reports"
	DefaultReporterOutputFile = "adstrace_report.html"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)
