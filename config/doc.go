// Package config describes the AEM server a client talks to and loads the
// aemctl configuration.
//
// Server values start from Default (localhost:4502, admin/admin, no SSL)
// and are adjusted with options:
//
//	srv := config.New(config.WithServerName("aem.example.com"), config.WithPort(443), config.WithSSL(true))
//	adapter, err := httpclient.New(srv.ClientConfig())
//
// Load reads config.yml and .env files with Viper and godotenv. Environment
// variables with the AEM_ prefix override file values using
// underscore-separated paths (e.g. AEM_SERVER_NAME, AEM_LOG_LEVEL).
package config
