package settings

// DB setting keys and defaults.
const (
	// SiteNameKey is the DB setting key for the site name shown to guests.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback site name.
	DefaultSiteName = "Our Wedding"

	// RateLimitMaxKeyFormat builds the per-action attempt cap key, e.g. RATE_LIMIT_RSVP_MAX.
	RateLimitMaxKeyFormat = "RATE_LIMIT_%s_MAX"
	// RateLimitWindowKeyFormat builds the per-action window key in seconds.
	RateLimitWindowKeyFormat = "RATE_LIMIT_%s_WINDOW_SECONDS"
)
