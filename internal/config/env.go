package config

import "os"

// ApplyEnv applies environment variable overrides to the configuration.
// Environment variables take precedence over the TOML config but are
// overridden by command-line flags. The bare LOG variable is honored for the
// log level alongside the QUIPD_-prefixed names.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("LOG"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QUIPD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QUIPD_HOSTNAME"); v != "" {
		cfg.Hostname = v
	}
	if v := os.Getenv("QUIPD_LISTEN"); v != "" {
		cfg.Listeners = []ListenerConfig{
			{Address: v, Mode: ModePlain},
		}
	}
	if v := os.Getenv("QUIPD_TLS_CERT_FILE"); v != "" {
		cfg.TLS.CertFile = v
	}
	if v := os.Getenv("QUIPD_TLS_KEY_FILE"); v != "" {
		cfg.TLS.KeyFile = v
	}
	if v := os.Getenv("QUIPD_USERS_PATH"); v != "" {
		cfg.Users.Source = SourceFile
		cfg.Users.Path = v
	}
	if v := os.Getenv("QUIPD_USERS_REDIS_ADDR"); v != "" {
		cfg.Users.Source = SourceRedis
		cfg.Users.RedisAddr = v
	}
	if v := os.Getenv("QUIPD_USERS_REDIS_PASSWORD"); v != "" {
		cfg.Users.RedisPassword = v
	}

	return cfg
}
