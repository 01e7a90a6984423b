package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"QuotePress/internal/domain"
)

const (
	configPathEnv     = "QUOTEPRESS_CONFIG"
	usernameEnv       = "X_USERNAME"
	hashtagEnv        = "HASHTAG"
	bearerTokenEnv    = "X_BEARER_TOKEN"
	wpSiteURLEnv      = "WP_SITE_URL"
	wpUsernameEnv     = "WP_USERNAME"
	wpPasswordEnv     = "WP_PASSWORD"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	cohereAPIKeyEnv   = "COHERE_API_KEY"
	providerEnv       = "GENERATOR_PROVIDER"
	githubTokenEnv    = "GITHUB_TOKEN"
	pagesRepoEnv      = "PAGES_REPO"
	s3BucketEnv       = "S3_BUCKET"
	publishModeEnv    = "PUBLISH_MODE"
	maxPerRunEnv      = "MAX_PER_RUN"
	logLevelEnv       = "LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	scheduleCronEnv   = "SCHEDULE_CRON"
)

// Publisher modes.
const (
	ModeWordPress = "wordpress"
	ModePages     = "pages"
)

// Generator providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderCohere = "cohere"
)

// Config holds high-level settings required across the application.
type Config struct {
	Profile       ProfileConfig      `yaml:"profile"`
	Sources       SourcesConfig      `yaml:"sources"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Ledger        LedgerConfig       `yaml:"ledger"`
	Research      ResearchConfig     `yaml:"research"`
	Generator     GeneratorConfig    `yaml:"generator"`
	Publisher     PublisherConfig    `yaml:"publisher"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ProfileConfig names the tracked account and tag.
type ProfileConfig struct {
	Username     string `yaml:"username"`
	Hashtag      string `yaml:"hashtag"`
	RequireQuote *bool  `yaml:"requireQuote"`
}

// QuoteRequired reports whether only quote posts qualify (default true).
func (p ProfileConfig) QuoteRequired() bool {
	return p.RequireQuote == nil || *p.RequireQuote
}

// SourcesConfig lists the strategies in priority order and their settings.
type SourcesConfig struct {
	Order  []string     `yaml:"order"`
	XAPI   XAPIConfig   `yaml:"xapi"`
	Nitter NitterConfig `yaml:"nitter"`
	RSS    RSSConfig    `yaml:"rss"`
	Manual ManualConfig `yaml:"manual"`
}

// XAPIConfig configures the official API strategy.
type XAPIConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	BearerToken string        `yaml:"bearerToken"`
	MaxResults  int           `yaml:"maxResults"`
	Timeout     time.Duration `yaml:"timeout"`
}

// NitterConfig configures HTML mirror scraping.
type NitterConfig struct {
	Instances []string      `yaml:"instances"`
	MaxItems  int           `yaml:"maxItems"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// RSSConfig configures RSS proxy feeds. Feed URLs may contain {user}.
type RSSConfig struct {
	Feeds    []string      `yaml:"feeds"`
	MaxItems int           `yaml:"maxItems"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ManualConfig points at the curated fallback file.
type ManualConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig bounds and paces a run.
type PipelineConfig struct {
	MaxPerRun     *int          `yaml:"maxPerRun"`
	ResearchDelay time.Duration `yaml:"researchDelay"`
	ItemDelay     time.Duration `yaml:"itemDelay"`
}

// Cap returns the per-run item cap; 0 means unbounded.
func (p PipelineConfig) Cap() int {
	if p.MaxPerRun == nil {
		return defaultMaxPerRun
	}
	return *p.MaxPerRun
}

// LedgerConfig selects the ledger backend.
type LedgerConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// ResearchConfig describes the instant-answer endpoint.
type ResearchConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// GeneratorConfig defines how to contact the text generation API.
type GeneratorConfig struct {
	Provider     string        `yaml:"provider"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// PublisherConfig selects and configures the publish target.
type PublisherConfig struct {
	Mode      string          `yaml:"mode"`
	WordPress WordPressConfig `yaml:"wordpress"`
	Pages     PagesConfig     `yaml:"pages"`
}

// WordPressConfig wires the REST endpoint and its retry policy.
type WordPressConfig struct {
	SiteURL     string        `yaml:"siteUrl"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Status      string        `yaml:"status"`
	MaxAttempts int           `yaml:"maxAttempts"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PagesConfig configures the static pages publisher.
type PagesConfig struct {
	Store     string            `yaml:"store"`
	SiteURL   string            `yaml:"siteUrl"`
	SiteTitle string            `yaml:"siteTitle"`
	Dir       string            `yaml:"dir"`
	IndexPath string            `yaml:"indexPath"`
	GitHub    GitHubStoreConfig `yaml:"github"`
	S3        S3StoreConfig     `yaml:"s3"`
}

// GitHubStoreConfig points at a repository served as a site.
type GitHubStoreConfig struct {
	Token  string `yaml:"token"`
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
}

// S3StoreConfig points at a bucket served as a site.
type S3StoreConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines when watch mode runs the pipeline. A non-empty Cron
// expression takes precedence over Interval.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Cron     string        `yaml:"cron"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const defaultMaxPerRun = 3

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to QUOTEPRESS_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillGeneratorDefaults()

	return cfg
}

// Validate reports every missing required value at once.
func (c Config) Validate() error {
	var missing []string
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	require(c.Profile.Username, "profile.username ("+usernameEnv+")")
	require(c.Profile.Hashtag, "profile.hashtag ("+hashtagEnv+")")

	switch c.Generator.Provider {
	case ProviderGemini:
		require(c.Generator.APIKey, "generator.apiKey ("+geminiAPIKeyEnv+")")
	case ProviderOpenAI:
		require(c.Generator.APIKey, "generator.apiKey ("+openAIAPIKeyEnv+")")
	case ProviderCohere:
		require(c.Generator.APIKey, "generator.apiKey ("+cohereAPIKeyEnv+")")
	default:
		missing = append(missing, fmt.Sprintf("generator.provider (unknown %q)", c.Generator.Provider))
	}

	switch c.Publisher.Mode {
	case ModeWordPress:
		require(c.Publisher.WordPress.SiteURL, "publisher.wordpress.siteUrl ("+wpSiteURLEnv+")")
		require(c.Publisher.WordPress.Username, "publisher.wordpress.username ("+wpUsernameEnv+")")
		require(c.Publisher.WordPress.Password, "publisher.wordpress.password ("+wpPasswordEnv+")")
	case ModePages:
		require(c.Publisher.Pages.SiteURL, "publisher.pages.siteUrl")
		switch c.Publisher.Pages.Store {
		case "github":
			require(c.Publisher.Pages.GitHub.Token, "publisher.pages.github.token ("+githubTokenEnv+")")
			require(c.Publisher.Pages.GitHub.Owner, "publisher.pages.github.owner ("+pagesRepoEnv+")")
			require(c.Publisher.Pages.GitHub.Repo, "publisher.pages.github.repo ("+pagesRepoEnv+")")
		case "s3":
			require(c.Publisher.Pages.S3.Bucket, "publisher.pages.s3.bucket ("+s3BucketEnv+")")
		default:
			missing = append(missing, fmt.Sprintf("publisher.pages.store (unknown %q)", c.Publisher.Pages.Store))
		}
	default:
		missing = append(missing, fmt.Sprintf("publisher.mode (unknown %q)", c.Publisher.Mode))
	}

	if expr := strings.TrimSpace(c.Scheduler.Cron); expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			missing = append(missing, fmt.Sprintf("scheduler.cron (%v)", err))
		}
	}

	switch c.Ledger.Driver {
	case "json":
		require(c.Ledger.Path, "ledger.path")
	case "sqlite":
		require(c.Ledger.DSN, "ledger.dsn")
	default:
		missing = append(missing, fmt.Sprintf("ledger.driver (unknown %q)", c.Ledger.Driver))
	}

	if len(c.Sources.Order) == 0 {
		missing = append(missing, "sources.order")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid %s", domain.ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(usernameEnv); v != "" {
		c.Profile.Username = strings.TrimPrefix(v, "@")
	}
	if v := os.Getenv(hashtagEnv); v != "" {
		c.Profile.Hashtag = v
	}
	if v := os.Getenv(bearerTokenEnv); v != "" {
		c.Sources.XAPI.BearerToken = v
	}

	if v := os.Getenv(wpSiteURLEnv); v != "" {
		c.Publisher.WordPress.SiteURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(wpUsernameEnv); v != "" {
		c.Publisher.WordPress.Username = v
	}
	if v := os.Getenv(wpPasswordEnv); v != "" {
		c.Publisher.WordPress.Password = v
	}
	if v := os.Getenv(publishModeEnv); v != "" {
		c.Publisher.Mode = strings.ToLower(v)
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Publisher.Pages.GitHub.Token = v
	}
	if v := os.Getenv(pagesRepoEnv); v != "" {
		if owner, repo, ok := strings.Cut(v, "/"); ok {
			c.Publisher.Pages.GitHub.Owner = owner
			c.Publisher.Pages.GitHub.Repo = repo
		}
	}
	if v := os.Getenv(s3BucketEnv); v != "" {
		c.Publisher.Pages.S3.Bucket = v
	}

	if v := os.Getenv(providerEnv); v != "" {
		c.Generator.Provider = strings.ToLower(v)
	}

	if v := os.Getenv(maxPerRunEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Pipeline.MaxPerRun = &n
		} else {
			log.Printf("config: ignoring %s=%q", maxPerRunEnv, v)
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(scheduleCronEnv); v != "" {
		c.Scheduler.Cron = v
	}
}

// fillGeneratorDefaults picks the key and model matching the chosen provider.
func (c *Config) fillGeneratorDefaults() {
	if c.Generator.APIKey == "" {
		switch c.Generator.Provider {
		case ProviderGemini:
			c.Generator.APIKey = os.Getenv(geminiAPIKeyEnv)
		case ProviderOpenAI:
			c.Generator.APIKey = os.Getenv(openAIAPIKeyEnv)
		case ProviderCohere:
			c.Generator.APIKey = os.Getenv(cohereAPIKeyEnv)
		}
	}

	if c.Generator.Model == "" {
		switch c.Generator.Provider {
		case ProviderGemini:
			c.Generator.Model = "googleai/gemini-2.5-flash"
		case ProviderOpenAI:
			c.Generator.Model = "gpt-4o-mini"
		case ProviderCohere:
			c.Generator.Model = "command-r-plus"
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Profile.Username != "" {
		base.Profile.Username = override.Profile.Username
	}
	if override.Profile.Hashtag != "" {
		base.Profile.Hashtag = override.Profile.Hashtag
	}
	if override.Profile.RequireQuote != nil {
		base.Profile.RequireQuote = override.Profile.RequireQuote
	}

	if len(override.Sources.Order) > 0 {
		base.Sources.Order = override.Sources.Order
	}
	if override.Sources.XAPI.Endpoint != "" {
		base.Sources.XAPI.Endpoint = override.Sources.XAPI.Endpoint
	}
	if override.Sources.XAPI.BearerToken != "" {
		base.Sources.XAPI.BearerToken = override.Sources.XAPI.BearerToken
	}
	if override.Sources.XAPI.MaxResults > 0 {
		base.Sources.XAPI.MaxResults = override.Sources.XAPI.MaxResults
	}
	if override.Sources.XAPI.Timeout > 0 {
		base.Sources.XAPI.Timeout = override.Sources.XAPI.Timeout
	}
	if len(override.Sources.Nitter.Instances) > 0 {
		base.Sources.Nitter.Instances = override.Sources.Nitter.Instances
	}
	if override.Sources.Nitter.MaxItems > 0 {
		base.Sources.Nitter.MaxItems = override.Sources.Nitter.MaxItems
	}
	if override.Sources.Nitter.UserAgent != "" {
		base.Sources.Nitter.UserAgent = override.Sources.Nitter.UserAgent
	}
	if override.Sources.Nitter.Timeout > 0 {
		base.Sources.Nitter.Timeout = override.Sources.Nitter.Timeout
	}
	if len(override.Sources.RSS.Feeds) > 0 {
		base.Sources.RSS.Feeds = override.Sources.RSS.Feeds
	}
	if override.Sources.RSS.MaxItems > 0 {
		base.Sources.RSS.MaxItems = override.Sources.RSS.MaxItems
	}
	if override.Sources.RSS.Timeout > 0 {
		base.Sources.RSS.Timeout = override.Sources.RSS.Timeout
	}
	if override.Sources.Manual.Path != "" {
		base.Sources.Manual.Path = override.Sources.Manual.Path
	}

	if override.Pipeline.MaxPerRun != nil {
		base.Pipeline.MaxPerRun = override.Pipeline.MaxPerRun
	}
	if override.Pipeline.ResearchDelay > 0 {
		base.Pipeline.ResearchDelay = override.Pipeline.ResearchDelay
	}
	if override.Pipeline.ItemDelay > 0 {
		base.Pipeline.ItemDelay = override.Pipeline.ItemDelay
	}

	if override.Ledger.Driver != "" {
		base.Ledger.Driver = override.Ledger.Driver
	}
	if override.Ledger.Path != "" {
		base.Ledger.Path = override.Ledger.Path
	}
	if override.Ledger.DSN != "" {
		base.Ledger.DSN = override.Ledger.DSN
	}

	if override.Research.Endpoint != "" {
		base.Research.Endpoint = override.Research.Endpoint
	}
	if override.Research.Timeout > 0 {
		base.Research.Timeout = override.Research.Timeout
	}

	if override.Generator.Provider != "" {
		base.Generator.Provider = override.Generator.Provider
	}
	if override.Generator.Endpoint != "" {
		base.Generator.Endpoint = override.Generator.Endpoint
	}
	if override.Generator.Model != "" {
		base.Generator.Model = override.Generator.Model
	}
	if override.Generator.APIKey != "" {
		base.Generator.APIKey = override.Generator.APIKey
	}
	if override.Generator.SystemPrompt != "" {
		base.Generator.SystemPrompt = override.Generator.SystemPrompt
	}
	if override.Generator.Timeout > 0 {
		base.Generator.Timeout = override.Generator.Timeout
	}

	if override.Publisher.Mode != "" {
		base.Publisher.Mode = override.Publisher.Mode
	}
	base.Publisher.WordPress = mergeWordPress(base.Publisher.WordPress, override.Publisher.WordPress)
	base.Publisher.Pages = mergePages(base.Publisher.Pages, override.Publisher.Pages)

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Cron != "" {
		base.Scheduler.Cron = override.Scheduler.Cron
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func mergeWordPress(base, override WordPressConfig) WordPressConfig {
	if override.SiteURL != "" {
		base.SiteURL = strings.TrimRight(override.SiteURL, "/")
	}
	if override.Username != "" {
		base.Username = override.Username
	}
	if override.Password != "" {
		base.Password = override.Password
	}
	if override.Status != "" {
		base.Status = override.Status
	}
	if override.MaxAttempts > 0 {
		base.MaxAttempts = override.MaxAttempts
	}
	if override.RetryDelay > 0 {
		base.RetryDelay = override.RetryDelay
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	return base
}

func mergePages(base, override PagesConfig) PagesConfig {
	if override.Store != "" {
		base.Store = override.Store
	}
	if override.SiteURL != "" {
		base.SiteURL = strings.TrimRight(override.SiteURL, "/")
	}
	if override.SiteTitle != "" {
		base.SiteTitle = override.SiteTitle
	}
	if override.Dir != "" {
		base.Dir = override.Dir
	}
	if override.IndexPath != "" {
		base.IndexPath = override.IndexPath
	}
	if override.GitHub.Token != "" {
		base.GitHub.Token = override.GitHub.Token
	}
	if override.GitHub.Owner != "" {
		base.GitHub.Owner = override.GitHub.Owner
	}
	if override.GitHub.Repo != "" {
		base.GitHub.Repo = override.GitHub.Repo
	}
	if override.GitHub.Branch != "" {
		base.GitHub.Branch = override.GitHub.Branch
	}
	if override.S3.Bucket != "" {
		base.S3 = override.S3
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			Order: []string{"xapi", "nitter", "rss", "manual"},
			XAPI: XAPIConfig{
				Endpoint:   "https://api.twitter.com",
				MaxResults: 10,
				Timeout:    15 * time.Second,
			},
			Nitter: NitterConfig{
				Instances: []string{
					"https://nitter.poast.org",
					"https://nitter.privacydev.net",
					"https://nitter.net",
				},
				MaxItems:  10,
				UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
				Timeout:   15 * time.Second,
			},
			RSS: RSSConfig{
				Feeds: []string{
					"https://nitter.net/{user}/rss",
					"https://rsshub.app/twitter/user/{user}",
				},
				MaxItems: 10,
				Timeout:  20 * time.Second,
			},
			Manual: ManualConfig{Path: "manual_tweets.json"},
		},
		Pipeline: PipelineConfig{
			ResearchDelay: 2 * time.Second,
			ItemDelay:     3 * time.Second,
		},
		Ledger: LedgerConfig{Driver: "json", Path: "processed_tweets.json"},
		Research: ResearchConfig{
			Endpoint: "https://api.duckduckgo.com/",
			Timeout:  10 * time.Second,
		},
		Generator: GeneratorConfig{
			Provider:     ProviderGemini,
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			SystemPrompt: "You are a professional blogger who writes clear, well-sourced articles.",
			Timeout:      60 * time.Second,
		},
		Publisher: PublisherConfig{
			Mode: ModeWordPress,
			WordPress: WordPressConfig{
				Status:      "publish",
				MaxAttempts: 3,
				RetryDelay:  15 * time.Second,
				Timeout:     30 * time.Second,
			},
			Pages: PagesConfig{
				Store:     "github",
				SiteTitle: "Quote Notes",
				Dir:       "posts",
				IndexPath: "index.html",
				GitHub:    GitHubStoreConfig{Branch: "main"},
			},
		},
		Scheduler: SchedulerConfig{Interval: time.Hour},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
