// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Output     string        `flag:"output,o" desc:"output path"`
		Clipboard  bool          `flag:"clipboard" desc:"copy to clipboard"`
		Capacity   int           `flag:"capacity" desc:"ring capacity"`
		Duration   time.Duration `flag:"duration" desc:"how long to record"`
		Recipients []string      `flag:"recipient" desc:"age recipients"`
		Untagged   string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	err := flagSet.Parse([]string{
		"-o", "r.json",
		"--clipboard",
		"--capacity", "500",
		"--duration", "30s",
		"--recipient", "age1a,age1b",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Output != "r.json" || !p.Clipboard || p.Capacity != 500 || p.Duration != 30*time.Second {
		t.Errorf("params = %+v", p)
	}
	if len(p.Recipients) != 2 || p.Recipients[1] != "age1b" {
		t.Errorf("Recipients = %v", p.Recipients)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Format   string        `flag:"format" default:"json"`
		Sampling bool          `flag:"sampling" default:"true"`
		Capacity int           `flag:"capacity" default:"10000"`
		Duration time.Duration `flag:"duration" default:"1m"`
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Format != "json" || !p.Sampling || p.Capacity != 10000 || p.Duration != time.Minute {
		t.Errorf("params = %+v", p)
	}
}

type configFlags struct {
	Path string
}

func (c *configFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.Path, "config", "", "config file")
}

func TestBindFlags_FlagBinderAndEmbedding(t *testing.T) {
	type params struct {
		JSONOutput
		Config configFlags
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--json", "--config", "c.yaml"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON || p.Config.Path != "c.yaml" {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notStruct int
	if err := BindFlags(&notStruct, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("pointer to int accepted")
	}
	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("unparseable default accepted")
	}
	type unsupported struct {
		Rate float32 `flag:"rate"`
	}
	if err := BindFlags(&unsupported{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("float32 accepted")
	}

	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic on bad params")
		}
	}()
	FlagsFromParams("x", notStruct)
}
