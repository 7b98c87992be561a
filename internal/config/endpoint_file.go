package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EndpointFile is the YAML form of an endpoint:
//
//	scheme: https
//	host: api.example.com
//	environment: /staging
//	headers:
//	  Authorization: Bearer abc
type EndpointFile struct {
	Scheme      string            `yaml:"scheme"`
	Host        string            `yaml:"host"`
	Environment string            `yaml:"environment"`
	Headers     map[string]string `yaml:"headers"`
}

// LoadEndpointFile reads and parses path. Unknown keys are rejected.
func LoadEndpointFile(path string) (*EndpointFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoint file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var f EndpointFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse endpoint file %s: %w", path, err)
	}
	return &f, nil
}
