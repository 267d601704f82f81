package config

const (
	defaultDataDir             = "~/.local/share/refit/data"
	defaultLogDir              = "~/.local/share/refit/logs"
	defaultTrackingPath        = "~/.local/share/refit/tracking.db"
	defaultSourceBaseURL       = "https://www.zara.com/us/en"
	defaultRequestDelayMS      = 2000
	defaultFetchTimeout        = 30
	defaultMaxAttempts         = 3
	defaultWorkers             = 4
	defaultProductsPerCategory = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// DefaultPolicyVersion identifies the tag policy rules shipped with this build.
const DefaultPolicyVersion = "tag_policy_v2.3"

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Source: Source{
			BaseURL: defaultSourceBaseURL,
			Categories: map[string]string{
				"tshirts":  "/man-tshirts-l855.html",
				"shirts":   "/man-shirts-l737.html",
				"sweaters": "/man-knitwear-l681.html",
				"trousers": "/man-trousers-l838.html",
				"jeans":    "/man-jeans-l659.html",
				"jackets":  "/man-jackets-l640.html",
				"blazers":  "/man-blazers-l608.html",
				"shoes":    "/man-shoes-l769.html",
			},
			RequestDelayMS: defaultRequestDelayMS,
			FetchTimeout:   defaultFetchTimeout,
			MaxAttempts:    defaultMaxAttempts,
		},
		Pipeline: Pipeline{
			Workers:             defaultWorkers,
			ProductsPerCategory: defaultProductsPerCategory,
		},
		Tracking: Tracking{
			Enabled: true,
			Path:    defaultTrackingPath,
		},
		Policy: Policy{
			Version:           DefaultPolicyVersion,
			StyleIdentityMin:  0.50,
			StyleIdentityAuto: 0.75,
			SilhouetteMin:     0.45,
			SilhouetteAuto:    0.70,
			ContextMin:        0.55,
			ConstructionMin:   0.50,
			PatternMin:        0.55,
			FormalityMin:      0.50,
			FormalityAuto:     0.70,
			WeightMin:         0.50,
			ShoeTypeMin:       0.65,
			ShoeProfileMin:    0.50,
			ShoeClosureMin:    0.50,
		},
		Transform: Transform{
			VariantsInheritParentAssets: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
