// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ClientConfig representa a configuração do tradutor local (cliente).
type ClientConfig struct {
	Gateway     GatewayTarget `yaml:"gateway"`
	Destination string        `yaml:"destination"` // host:port do servidor de destino
	AuthKey     string        `yaml:"auth_key"`
	TLS         TLSClient     `yaml:"tls"`
	Logging     LoggingInfo   `yaml:"logging"`
}

// GatewayTarget aponta para o gateway remoto.
type GatewayTarget struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"` // default: 6666
}

// TLSClient configura a validação do certificado do gateway.
type TLSClient struct {
	// InsecureSkipVerify desliga a validação do certificado do gateway.
	// Necessário para gateways com certificado self-signed.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Address retorna o endereço host:port do gateway.
func (g GatewayTarget) Address() string {
	return net.JoinHostPort(g.Host, strconv.Itoa(int(g.Port)))
}

// LoadClientConfig lê e valida o arquivo YAML do cliente.
func LoadClientConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading client config: %w", err)
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating client config: %w", err)
	}
	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	if c.Gateway.Host == "" {
		return fmt.Errorf("gateway.host is required")
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 6666
	}
	if c.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	if _, _, err := net.SplitHostPort(c.Destination); err != nil {
		return fmt.Errorf("destination must be host:port: %w", err)
	}
	if c.AuthKey == "" {
		return fmt.Errorf("auth_key is required")
	}
	c.Logging.applyDefaults()
	return nil
}
