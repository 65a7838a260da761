package main

import (
	"flag"
	"testing"

	"flux/internal/util"
)

func TestResolveCycles(t *testing.T) {
	config := util.DefaultConfiguration()
	config.NCycles = 0.75

	// no -cycles flag set: the configured value applies
	if got := resolveCycles(config); got != 0.75 {
		t.Errorf("configured cycles ignored: got %v, want 0.75", got)
	}

	// an explicit flag overrides the config file
	if err := flag.Set("cycles", "0.25"); err != nil {
		t.Fatalf("flag.Set: %v", err)
	}
	if got := resolveCycles(config); got != 0.25 {
		t.Errorf("flag override ignored: got %v, want 0.25", got)
	}
}
