package config

import "testing"

func TestValidate(t *testing.T) {
	conf := NewDefaultConfig()
	if err := conf.Validate(); err != nil {
		t.Fatal(err)
	}

	conf.SlotDuration = 0
	if err := conf.Validate(); err == nil {
		t.Fatal("a zero slot duration should be rejected")
	}

	conf = NewDefaultConfig()
	conf.CacheSize = 0
	if err := conf.Validate(); err == nil {
		t.Fatal("a zero cache size should be rejected")
	}
}
