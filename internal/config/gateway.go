// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package config carrega e valida os arquivos YAML de configuração dos
// dois peers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GatewayConfig representa a configuração completa do nquicproxy-gateway.
type GatewayConfig struct {
	Gateway GatewayListen `yaml:"gateway"`
	TLS     TLSGateway    `yaml:"tls"`
	Auth    AuthInfo      `yaml:"auth"`
	Logging LoggingInfo   `yaml:"logging"`
}

// GatewayListen contém o endereço UDP de escuta do gateway.
type GatewayListen struct {
	Listen string `yaml:"listen"` // default: "0.0.0.0:6666"
}

// TLSGateway contém a identidade TLS do gateway. Com os dois caminhos
// vazios, um certificado self-signed para "localhost" é gerado no boot.
type TLSGateway struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// AuthInfo contém a credencial exigida dos clientes: um PHC Argon2id ou
// uma string em texto plano.
type AuthInfo struct {
	Credential string `yaml:"credential"`
}

// LoggingInfo configura o logger estruturado.
type LoggingInfo struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // default: "json"
	File   string `yaml:"file"`   // vazio = só stdout
}

// LoadGatewayConfig lê e valida o arquivo YAML do gateway.
func LoadGatewayConfig(path string) (*GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gateway config: %w", err)
	}

	var cfg GatewayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing gateway config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating gateway config: %w", err)
	}
	return &cfg, nil
}

func (c *GatewayConfig) validate() error {
	if c.Gateway.Listen == "" {
		c.Gateway.Listen = "0.0.0.0:6666"
	}
	if c.Auth.Credential == "" {
		return fmt.Errorf("auth.credential is required")
	}
	if (c.TLS.Cert == "") != (c.TLS.Key == "") {
		return fmt.Errorf("tls.cert and tls.key must be set together")
	}
	c.Logging.applyDefaults()
	return nil
}

func (l *LoggingInfo) applyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
}
