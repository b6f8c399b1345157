package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func load(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	if err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_ADDR", "")
	load(t)

	if got := APIAddr(); got != ":8080" {
		t.Errorf("APIAddr = %q", got)
	}
	if SimulationInterval() != 5*time.Second || !SimulationEnabled() {
		t.Errorf("simulation defaults: %v %v", SimulationInterval(), SimulationEnabled())
	}
	sim := SimulationSettings()
	if sim.BasePower != 300 || sim.JitterMin != -50 || sim.JitterMax != 200 || sim.TheftProb != 0.01 {
		t.Errorf("simulation settings %+v", sim)
	}
	if a := AlertingSettings(); a.HighUsageWatts != 440 || a.HighUsageCooldown != time.Hour {
		t.Errorf("alerting settings %+v", a)
	}
	if TariffPerKWh() != 8 || BillingMaxGap() != 15*time.Minute {
		t.Errorf("billing defaults %v %v", TariffPerKWh(), BillingMaxGap())
	}
	if AdminUsername() != "admin" || UseCloudServices() {
		t.Errorf("admin/cloud defaults %q %v", AdminUsername(), UseCloudServices())
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		addr string
	}{
		{"api addr", map[string]string{"PORT": "", "API_ADDR": "127.0.0.1:9000"}, "127.0.0.1:9000"},
		{"port wins", map[string]string{"PORT": "5000", "API_ADDR": "127.0.0.1:9000"}, ":5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			load(t)
			if got := APIAddr(); got != tt.addr {
				t.Fatalf("APIAddr = %q, want %q", got, tt.addr)
			}
		})
	}

	t.Setenv("HIGH_USAGE_WATTS", "500")
	t.Setenv("SIM_INTERVAL", "2s")
	t.Setenv("STORAGE_DRIVER", "memory")
	load(t)
	if AlertingSettings().HighUsageWatts != 500 || SimulationInterval() != 2*time.Second || StorageDriver() != "memory" {
		t.Fatalf("overrides not applied: %+v %v %q", AlertingSettings(), SimulationInterval(), StorageDriver())
	}
}
