// Package catalog maps the data resources the API exposes to their Fitbit
// endpoint path templates.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var rawResources []byte

// Resource describes one proxied Fitbit data resource. Path templates use
// {date} and {period} placeholders.
type Resource struct {
	Name          string `yaml:"name"`
	Path          string `yaml:"path"`
	DefaultPeriod string `yaml:"default_period"`
}

type fileConfig struct {
	Resources []Resource `yaml:"resources"`
}

var (
	once    sync.Once
	byName  map[string]Resource
	loadErr error
)

func load() {
	var cfg fileConfig
	if err := yaml.Unmarshal(rawResources, &cfg); err != nil {
		loadErr = fmt.Errorf("parse embedded resource catalog: %w", err)
		return
	}
	byName = make(map[string]Resource, len(cfg.Resources))
	for _, r := range cfg.Resources {
		byName[r.Name] = r
	}
}

// Lookup returns the resource definition for name.
func Lookup(name string) (Resource, bool) {
	once.Do(load)
	if loadErr != nil {
		return Resource{}, false
	}
	r, ok := byName[name]
	return r, ok
}

// Names lists all catalogued resource names, sorted.
func Names() []string {
	once.Do(load)
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoint expands the path template. An empty date means "today"; an empty
// period falls back to the resource's default.
func (r Resource) Endpoint(date, period string) string {
	if date == "" {
		date = "today"
	}
	if period == "" {
		period = r.DefaultPeriod
	}
	p := strings.ReplaceAll(r.Path, "{date}", date)
	return strings.ReplaceAll(p, "{period}", period)
}
