package database

import (
	"testing"

	"indrhi-inventory/pkg/config"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		wantName string
		wantErr  bool
	}{
		{name: "default_is_mysql", driver: "", wantName: "mysql"},
		{name: "mysql", driver: "mysql", wantName: "mysql"},
		{name: "postgres", driver: "postgres", wantName: "postgres"},
		{name: "unknown", driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DBDriver: tt.driver, DBHost: "localhost", DBName: "indrhi"}
			dialector, err := Dialector(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for driver %q", tt.driver)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if dialector.Name() != tt.wantName {
				t.Errorf("Expected dialector %s, got %s", tt.wantName, dialector.Name())
			}
		})
	}
}
