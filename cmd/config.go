package cmd

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	MqttBrokerURL string
	MqttClientID  string

	GeocodingAPIKey string

	OrderRetryCooldownSeconds int
	AgentRetryCooldownSeconds int
	AssignmentTimeoutSeconds  int
	MaxRetryAttempts          int
	MaxConcurrentDeliveries   int
}
