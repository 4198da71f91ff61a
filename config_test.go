package udpchat

import (
	"testing"
	"time"

	"github.com/udpchat/udpchat/packet"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}

	if config.Port != packet.DefaultPort {
		t.Errorf("default port %d, want %d", config.Port, packet.DefaultPort)
	}
	if config.ListenAddr() != "0.0.0.0:5000" {
		t.Errorf("listen addr %q", config.ListenAddr())
	}
	if config.QueueDepth <= 0 {
		t.Errorf("queue depth %d, want positive", config.QueueDepth)
	}
	if config.RatePeriod != 3*time.Second {
		t.Errorf("rate period %s, want 3s", config.RatePeriod)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("UDPCHAT_PORT", "6500")
	t.Setenv("UDPCHAT_HOST", "127.0.0.1")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if config.ListenAddr() != "127.0.0.1:6500" {
		t.Errorf("listen addr %q, want 127.0.0.1:6500", config.ListenAddr())
	}
}
