package resource

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"TreasuryDash/internal/checksum"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/serviceiface"
	"TreasuryDash/internal/treasury"
)

// Resource is a file the manager polls for changes.
type Resource struct {
	Path     string
	modTime  time.Time
	size     int64
	content  *checksum.ChecksumMatcher
	onChange func() error
}

// ResourceManager polls the configuration and ledger files on every
// heartbeat and reacts when one of them changes on disk.
type ResourceManager struct {
	resources         map[string]*Resource
	mu                sync.RWMutex
	stopChan          chan struct{}
	stopOnce          sync.Once
	heartbeatInterval time.Duration
}

// NewResourceManager creates an empty manager.
func NewResourceManager(interval time.Duration) *ResourceManager {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ResourceManager{
		resources:         make(map[string]*Resource),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
	}
}

// NewResourceManagerService watches the engine configuration (reloaded into
// the config store on change) and the ledger snapshot (dashboard rebuilt and
// published on change).
func NewResourceManagerService(cfg map[string]interface{}, env *treasury.Env) serviceiface.Service {
	interval := 5 * time.Second // default
	if val, ok := cfg["heartbeat_interval"]; ok {
		switch v := val.(type) {
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				interval = d
			}
		case int:
			interval = time.Duration(v) * time.Second
		case float64:
			interval = time.Duration(v) * time.Second
		}
	}
	rm := NewResourceManager(interval)
	if env == nil {
		return rm
	}

	if path := env.Store.Path(); path != "" {
		rm.AddResource("config", path, func() error {
			c := env.Store.Reload()
			if c.UsedDefaults() {
				return fmt.Errorf("config reloaded with defaults: %s", c.DefaultsReason())
			}
			return nil
		})
	}
	if env.Settings != nil && env.Settings.LedgerPath != "" {
		rm.AddResource("ledger", env.Settings.LedgerPath, func() error {
			d, err := env.BuildDashboard(context.Background())
			if err != nil {
				return err
			}
			env.Publish(d)
			return nil
		})
	}
	return rm
}

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	logger.Audit(fmt.Sprintf("ResourceManager started watching %v", rm.ListResources()))
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	rm.stopOnce.Do(func() { close(rm.stopChan) })
	return nil
}

func (rm *ResourceManager) heartbeatLoop() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.Check()
		}
	}
}

// Check stats every resource once and runs the change handler of those whose
// content changed since the last check. A moved modification time with the
// same checksum is not a change. It returns the keys that changed.
func (rm *ResourceManager) Check() []string {
	log := logger.WithComponent("resourcemanager")

	rm.mu.Lock()
	var changed []*Resource
	var keys []string
	for key, r := range rm.resources {
		info, err := os.Stat(r.Path)
		if err != nil {
			continue
		}
		if info.ModTime().Equal(r.modTime) && info.Size() == r.size {
			continue
		}
		r.modTime, r.size = info.ModTime(), info.Size()
		if differs, err := r.content.Update(r.Path); err != nil || !differs {
			continue
		}
		changed = append(changed, r)
		keys = append(keys, key)
	}
	rm.mu.Unlock()

	for i, r := range changed {
		log.Info().Str("resource", keys[i]).Str("path", r.Path).Msg("Resource changed")
		if r.onChange == nil {
			continue
		}
		if err := r.onChange(); err != nil {
			log.Warn().Err(err).Str("resource", keys[i]).Msg("Resource change handler failed")
		}
	}
	sort.Strings(keys)
	return keys
}

// AddResource starts tracking path under key. The current state of the file
// is the baseline; onChange runs on later modifications.
func (rm *ResourceManager) AddResource(key, path string, onChange func() error) {
	r := &Resource{Path: path, onChange: onChange, content: checksum.NewChecksumMatcher("")}
	if info, err := os.Stat(path); err == nil {
		r.modTime, r.size = info.ModTime(), info.Size()
		r.content.Update(path)
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources[key] = r
}

func (rm *ResourceManager) GetResource(key string) (*Resource, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	resource, exists := rm.resources[key]
	return resource, exists
}

func (rm *ResourceManager) RemoveResource(key string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.resources, key)
}

func (rm *ResourceManager) ListResources() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	keys := make([]string, 0, len(rm.resources))
	for key := range rm.resources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
