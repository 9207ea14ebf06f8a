package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
	RotateOnUse     bool   `yaml:"rotate_on_use"`
}

type PasswordConfig struct {
	BcryptCost    int `yaml:"bcrypt_cost"`
	MaxConcurrent int `yaml:"max_concurrent"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type JanitorConfig struct {
	Interval string `yaml:"interval"`
}

type AvatarConfig struct {
	URLTTL int `yaml:"url_ttl"`
}
