package types

// Thresholds collects every tunable constant in the engine. Components take
// a Thresholds value at construction so tests can run with non-default
// settings; nothing reads these ambiently.
type Thresholds struct {
	// Pages below this impression volume are skipped during analysis.
	MinImpressionsForAnalysis int `yaml:"minImpressionsForAnalysis" json:"minImpressionsForAnalysis"`

	// Cooldown: days since a page's last experiment before it may be
	// re-optimized. Boundary inclusive at >=.
	MinDaysBetweenChanges int `yaml:"minDaysBetweenChanges" json:"minDaysBetweenChanges"`

	// Minimum experiment age before evaluation is attempted.
	MinDaysForEvaluation int `yaml:"minDaysForEvaluation" json:"minDaysForEvaluation"`

	// After this many days an experiment is evaluated regardless of volume.
	MaxDaysForEvaluation int `yaml:"maxDaysForEvaluation" json:"maxDaysForEvaluation"`

	// Minimum post-change impressions required for a threshold verdict.
	MinPostChangeImpressions int `yaml:"minPostChangeImpressions" json:"minPostChangeImpressions"`

	// Pages scoring below this need optimization.
	OptimizationThreshold int `yaml:"optimizationThreshold" json:"optimizationThreshold"`

	// Minimum opportunity score (impressions x missing points) to rank.
	MinOpportunityScore int `yaml:"minOpportunityScore" json:"minOpportunityScore"`

	// Hard ceiling on experiment creations per run.
	MaxExperimentsPerMonth int `yaml:"maxExperimentsPerMonth" json:"maxExperimentsPerMonth"`

	// Impression change fractions for outcome classification (inclusive).
	ImprovementThreshold float64 `yaml:"improvementThreshold" json:"improvementThreshold"`
	WorsenedThreshold    float64 `yaml:"worsenedThreshold" json:"worsenedThreshold"`

	// Absolute position movement beyond which results are confounded.
	PositionChangeThreshold float64 `yaml:"positionChangeThreshold" json:"positionChangeThreshold"`

	// Early-warning alert fractions, independent of the outcome thresholds.
	AlertDeclineThreshold float64 `yaml:"alertDeclineThreshold" json:"alertDeclineThreshold"`
	AlertSuccessThreshold float64 `yaml:"alertSuccessThreshold" json:"alertSuccessThreshold"`
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinImpressionsForAnalysis: 100,
		MinDaysBetweenChanges:     30,
		MinDaysForEvaluation:      30,
		MaxDaysForEvaluation:      120,
		MinPostChangeImpressions:  50,
		OptimizationThreshold:     3,
		MinOpportunityScore:       500,
		MaxExperimentsPerMonth:    50,
		ImprovementThreshold:      0.10,
		WorsenedThreshold:         -0.10,
		PositionChangeThreshold:   2.0,
		AlertDeclineThreshold:     -0.25,
		AlertSuccessThreshold:     0.30,
	}
}

// SiteConfig identifies the site under optimization.
type SiteConfig struct {
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
}

// DynamoDBConfig holds DynamoDB connection and table settings.
type DynamoDBConfig struct {
	TableName   string `yaml:"tableName" json:"tableName"`
	Region      string `yaml:"region" json:"region"`
	Endpoint    string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	CreateTable bool   `yaml:"createTable,omitempty" json:"createTable,omitempty"`
}

// MetricsAPIConfig configures the search metrics collaborator.
type MetricsAPIConfig struct {
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
	Token   string `yaml:"token,omitempty" json:"token,omitempty"`
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Search data arrives with a delay; windows end this many days ago.
	DataLagDays int `yaml:"dataLagDays,omitempty" json:"dataLagDays,omitempty"`
	WindowDays  int `yaml:"windowDays,omitempty" json:"windowDays,omitempty"`
}

// CMSConfig configures the content management system collaborator.
type CMSConfig struct {
	BaseURL     string `yaml:"baseUrl" json:"baseUrl"`
	Username    string `yaml:"username" json:"username"`
	AppPassword string `yaml:"appPassword" json:"appPassword"`
	Timeout     string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// GeneratorConfig configures the content generation collaborator.
type GeneratorConfig struct {
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
	Model   string `yaml:"model,omitempty" json:"model,omitempty"`
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// SinkConfig defines an alert sink.
type SinkConfig struct {
	Type     SinkType `yaml:"type" json:"type"`
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`
	Path     string   `yaml:"path,omitempty" json:"path,omitempty"`
	TopicARN string   `yaml:"topicArn,omitempty" json:"topicArn,omitempty"`
}

// ReportConfig configures where run reports are archived.
type ReportConfig struct {
	Dir      string `yaml:"dir,omitempty" json:"dir,omitempty"`
	S3Bucket string `yaml:"s3Bucket,omitempty" json:"s3Bucket,omitempty"`
	S3Prefix string `yaml:"s3Prefix,omitempty" json:"s3Prefix,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string `yaml:"addr" json:"addr"`
	APIKey         string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	MaxRequestBody int64  `yaml:"maxRequestBody,omitempty" json:"maxRequestBody,omitempty"`
}

// ArchiverConfig configures the background Postgres archiver.
type ArchiverConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Interval string `yaml:"interval" json:"interval"` // e.g. "5m"
	DSN      string `yaml:"dsn" json:"dsn"`
}

// ProjectConfig represents the top-level aio.yaml configuration.
type ProjectConfig struct {
	Site       SiteConfig       `yaml:"site"`
	DynamoDB   *DynamoDBConfig  `yaml:"dynamodb"`
	Thresholds Thresholds       `yaml:"thresholds"`
	Metrics    MetricsAPIConfig `yaml:"metrics"`
	CMS        CMSConfig        `yaml:"cms"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Alerts     []SinkConfig     `yaml:"alerts,omitempty"`
	Reports    ReportConfig     `yaml:"reports,omitempty"`
	Server     *ServerConfig    `yaml:"server,omitempty"`
	Archiver   *ArchiverConfig  `yaml:"archiver,omitempty"`
}
