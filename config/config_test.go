package config

import "testing"

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func TestLoadAppliesDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"RPC_NETWORK":      "polygon-amoy",
		"ECDSA_KEY_NAME":   "dfx_test_key",
		"ADMIN_JWT_SECRET": "secret",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxFeeMultiplier != 2.0 {
			t.Fatalf("expected default max fee multiplier 2.0, got %v", cfg.MaxFeeMultiplier)
		}
		if cfg.PriorityMultiplier != 1.2 {
			t.Fatalf("expected default priority multiplier 1.2, got %v", cfg.PriorityMultiplier)
		}
		if cfg.ListenAddr != ":8080" {
			t.Fatalf("expected default listen addr, got %v", cfg.ListenAddr)
		}
	})
}

func TestLoadFailsFastWithoutRPCNetwork(t *testing.T) {
	withEnv(t, map[string]string{
		"RPC_NETWORK":      "",
		"ECDSA_KEY_NAME":   "dfx_test_key",
		"ADMIN_JWT_SECRET": "secret",
	}, func() {
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when RPC_NETWORK is unset")
		}
	})
}

func TestLoadParsesDerivationPath(t *testing.T) {
	withEnv(t, map[string]string{
		"RPC_NETWORK":           "polygon-amoy",
		"ECDSA_KEY_NAME":        "dfx_test_key",
		"ADMIN_JWT_SECRET":      "secret",
		"ECDSA_DERIVATION_PATH": "00:01",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.EcdsaDerivationPath) != 2 {
			t.Fatalf("expected 2 derivation path components, got %d", len(cfg.EcdsaDerivationPath))
		}
	})
}
