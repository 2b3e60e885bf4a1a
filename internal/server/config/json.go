package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/geosync/internal/flagx"
)

// JsonConfig is the on-disk shape of the server configuration file.
type JsonConfig struct {
	EndpointAddr   string `json:"endpoint_addr"`
	EndpointSuffix string `json:"endpoint_suffix"`
	Storage        string `json:"storage"`
	DatabaseDSN    string `json:"database_dsn"`
	ResetToken     string `json:"reset_token"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Keys absent from the file keep their current values. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.EndpointSuffix, c.EndpointSuffix)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ResetToken, c.ResetToken)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
