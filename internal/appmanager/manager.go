package appmanager

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"TreasuryDash/api/cash"
	"TreasuryDash/internal/dashboard"
	"TreasuryDash/internal/jobs"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/resource"
	"TreasuryDash/internal/serviceiface"
	"TreasuryDash/internal/treasury"

	"gopkg.in/yaml.v3"
)

var env *treasury.Env

// SetEnv hands the shared treasury state to the service constructors.
func SetEnv(e *treasury.Env) {
	env = e
}

// GetEnv returns the shared treasury state
func GetEnv() *treasury.Env {
	return env
}

var serviceConstructors = map[string]func(map[string]interface{}) serviceiface.Service{
	"logger": func(cfg map[string]interface{}) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"resourcemanager": func(cfg map[string]interface{}) serviceiface.Service {
		return resource.NewResourceManagerService(cfg, env)
	},
	"cash": func(cfg map[string]interface{}) serviceiface.Service {
		if env != nil && env.SSE == nil {
			env.SSE = dashboard.NewSSEServer()
		}
		return cash.NewCashService(cfg, env)
	},
	"cron": func(cfg map[string]interface{}) serviceiface.Service {
		return jobs.NewCronService(cfg, env)
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

// StartAll starts services in registration order. The resource manager goes
// last so the files it watches are already in use.
func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	log := logger.WithComponent("appmanager")

	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			continue
		}
		log.Info().Str("service", service.Name()).Msg("Starting service")
		if err := service.Start(); err != nil {
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}

	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			log.Info().Str("service", service.Name()).Msg("Starting service")
			if err := service.Start(); err != nil {
				return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
			}
		}
	}
	return nil
}

// StopAll stops services in reverse order. Every service gets a Stop call;
// the first error is returned.
func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	var first error
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil && first == nil {
			first = fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return first
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// sort by start_order
	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})

	return seq.Services, nil
}

// AutoRegisterServices builds every known service named in configs. Unknown
// names are logged and skipped.
func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			logger.WithComponent("appmanager").Warn().Str("service", svc.Name).Msg("Unknown service in sequence")
			continue
		}
		am.RegisterService(constructor(svc.Config))
	}

	for _, svc := range am.services {
		if l, ok := svc.(*logger.LoggerService); ok {
			logger.SetGlobalLogger(l)
			break
		}
	}
}

/*
Example services.yaml:
services:
  - name: logger
    start_order: 1
    config:
      folder_path: ./logs
  - name: cash
    start_order: 2
    config:
      port: 6143
  - name: cron
    start_order: 3
    config:
      schedule: "0 8,18 * * *"
  - name: resourcemanager
    start_order: 4
    config:
      heartbeat_interval: 10s
*/

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	am.mu.Lock()
	defer am.mu.Unlock()
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}

// ServiceNames lists the registered services in start order.
func (am *AppManager) ServiceNames() []string {
	am.mu.Lock()
	defer am.mu.Unlock()
	names := make([]string, len(am.services))
	for i, svc := range am.services {
		names[i] = svc.Name()
	}
	return names
}
