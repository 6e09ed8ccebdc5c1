package config

type BankingConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	SecretKey string `yaml:"secret_key"`
}

func loadBankingConfig() *BankingConfig {
	return &BankingConfig{
		Provider:  getEnv("BANKING_PROVIDER", "paystack"),
		BaseURL:   getEnv("BANKING_BASE_URL", "https://api.paystack.co"),
		SecretKey: getEnv("BANKING_SECRET_KEY", ""),
	}
}
