package config

import (
	"os"
	"testing"
)

func TestLoadINI(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "saltybot_config_*.ini")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `BOT_TOKEN = test_token
GuildID = 1001
VerifyChatID = -100200
ApprovalChatID = -100300
AdminUserIDs = 123, 456
Timezone = Asia/Bangkok
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("write config: %v", err)
	}
	tmpFile.Close()

	conf, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("BOT_TOKEN") != "test_token" {
		t.Errorf("expected BOT_TOKEN=test_token, got %s", conf.GetString("BOT_TOKEN"))
	}
	if conf.GetInt64("VerifyChatID") != -100200 {
		t.Errorf("expected VerifyChatID=-100200, got %d", conf.GetInt64("VerifyChatID"))
	}
	admins := conf.GetInt64Slice("AdminUserIDs")
	if len(admins) != 2 || admins[0] != 123 || admins[1] != 456 {
		t.Errorf("expected AdminUserIDs=[123 456], got %v", admins)
	}
}

func TestDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "saltybot_config_*.ini")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.WriteString("BOT_TOKEN = x\n"); err != nil {
		t.Fatalf("write config: %v", err)
	}
	tmpFile.Close()

	conf, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if conf.GetString("LogLevel") != "info" {
		t.Errorf("expected default LogLevel=info, got %s", conf.GetString("LogLevel"))
	}
	if conf.GetString("Timezone") != "Asia/Bangkok" {
		t.Errorf("expected default Timezone, got %s", conf.GetString("Timezone"))
	}
	if conf.GetInt("MinAccountAgeDaysHigh") != 7 {
		t.Errorf("expected default MinAccountAgeDaysHigh=7, got %d", conf.GetInt("MinAccountAgeDaysHigh"))
	}
}
