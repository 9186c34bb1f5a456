package core

type APIConfig struct {
	Port           uint32   `json:"port" yaml:"port"` // 0 disables the api
	PathPrefix     string   `json:"pathPrefix" yaml:"pathPrefix"`
	AllowedHeaders []string `json:"allowedHeaders" yaml:"allowedHeaders"`
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
	AllowedMethods []string `json:"allowedMethods" yaml:"allowedMethods"`
	APIKeyHeader   string   `json:"apiKeyHeader" yaml:"apiKeyHeader"`
	APIKeys        []string `json:"apiKeys" yaml:"apiKeys"`
}

func (c APIConfig) IsEnabled() bool {
	return c.Port != 0
}
