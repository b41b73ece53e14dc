package main

import (
	"testing"

	"joyeria/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short", DBPath: "joyeria.db"})
	if err == nil {
		t.Fatalf("expected short auth secret to be rejected")
	}

	err = validateSecurityConfig(config.Config{
		AuthSecret:         "0123456789abcdef0123456789abcdef",
		DBPath:             "joyeria.db",
		BootstrapAdminName: "Dueña",
		BootstrapAdminPass: "1234",
	})
	if err == nil {
		t.Fatalf("expected weak bootstrap password to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:         "0123456789abcdef0123456789abcdef",
		DBPath:             "joyeria.db",
		BootstrapAdminName: "Dueña",
		BootstrapAdminPass: "oro-y-plata-26",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}
