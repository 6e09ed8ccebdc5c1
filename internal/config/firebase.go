package config

type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
	BroadcastTopic  string `yaml:"broadcast_topic"`
}

func loadFirebaseConfig() *FirebaseConfig {
	return &FirebaseConfig{
		CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase-credentials.json"),
		ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		BroadcastTopic:  getEnv("FIREBASE_BROADCAST_TOPIC", "broadcasts"),
	}
}
