package models

type Config struct {
	Debug bool `yaml:"debug" envconfig:"VSAL_DEBUG"`

	Api struct {
		Port        string `yaml:"port" envconfig:"VSAL_API_INTERNAL_PORT"`
		Url         string `yaml:"url" envconfig:"VSAL_API_URL"`
		MaxVariants int    `yaml:"maxVariants" envconfig:"VSAL_API_MAX_VARIANTS" default:"10000"`
	} `yaml:"api"`

	Elasticsearch struct {
		Url      string `yaml:"url" envconfig:"VSAL_ES_URL"`
		Username string `yaml:"username" envconfig:"VSAL_ES_USERNAME"`
		Password string `yaml:"password" envconfig:"VSAL_ES_PASSWORD"`

		// per-scan settings; a scan exceeding the timeout fails the
		// whole request, there are no retries at the scan level
		ScanBatchSize      int `yaml:"scanBatchSize" envconfig:"VSAL_ES_SCAN_BATCH_SIZE" default:"1000"`
		ScanTimeoutSeconds int `yaml:"scanTimeoutSeconds" envconfig:"VSAL_ES_SCAN_TIMEOUT_SECONDS" default:"180"`
	} `yaml:"elasticsearch"`

	AuthX struct {
		JwtIssuer      string `yaml:"jwtIssuer" envconfig:"VSAL_AUTHX_JWT_ISSUER"`
		JwtAccessClaim string `yaml:"jwtAccessClaim" envconfig:"VSAL_AUTHX_JWT_ACCESS_CLAIM" default:"vsal/access"`
		PublicJwksUrl  string `yaml:"publicJwksUrl" envconfig:"VSAL_AUTHX_PUBLIC_JWKS_URL"`
	} `yaml:"authx"`

	Pheno struct {
		Path string `yaml:"path" envconfig:"VSAL_PHENO_PATH"`
	} `yaml:"pheno"`
}
