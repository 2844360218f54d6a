// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ironcore-dev/bif-utils/regutils/poll"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const DefaultGeneration = "ad102"

// Generation holds the timing of one GPU hardware generation.
type Generation struct {
	GrantTimeout      metav1.Duration `json:"grantTimeout,omitempty"`
	GrantPollInterval metav1.Duration `json:"grantPollInterval,omitempty"`
}

func (g *Generation) Defaults() {
	if g.GrantTimeout.Duration <= 0 {
		g.GrantTimeout.Duration = 4 * time.Second
	}
	if g.GrantPollInterval.Duration <= 0 {
		g.GrantPollInterval.Duration = time.Millisecond
	}
}

// GrantPollOptions returns the poll options of the eRoT grant handshake.
func (g Generation) GrantPollOptions() poll.Options {
	return poll.Options{
		Interval: g.GrantPollInterval.Duration,
		Timeout:  g.GrantTimeout.Duration,
	}
}

type Config struct {
	SysfsRoot   string                `json:"sysfsRoot,omitempty"`
	Generations map[string]Generation `json:"generations,omitempty"`
}

func (c *Config) Defaults() {
	if c.SysfsRoot == "" {
		c.SysfsRoot = "/sys"
	}
	if c.Generations == nil {
		c.Generations = map[string]Generation{}
	}
	if _, ok := c.Generations[DefaultGeneration]; !ok {
		c.Generations[DefaultGeneration] = Generation{}
	}
	for name, gen := range c.Generations {
		gen.Defaults()
		c.Generations[name] = gen
	}
}

// Generation returns the settings of the named generation.
func (c *Config) Generation(name string) (Generation, error) {
	gen, ok := c.Generations[name]
	if !ok {
		return Generation{}, fmt.Errorf("unknown hardware generation %q", name)
	}
	return gen, nil
}

func Default() *Config {
	c := &Config{}
	c.Defaults()
	return c
}

// Load reads a YAML config file and applies defaults. An empty path yields the
// default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c := &Config{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.Defaults()
	return c, nil
}
