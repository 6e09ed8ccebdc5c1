package config

type GeoConfig struct {
	StatesFeedURL string `yaml:"states_feed_url"`
}

func loadGeoConfig() *GeoConfig {
	return &GeoConfig{
		StatesFeedURL: getEnv("GEO_STATES_FEED_URL", "https://nga-states-lga.onrender.com/fetch"),
	}
}
