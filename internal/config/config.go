// Package config loads the table's tunable settings from an HCL file, in
// the same gohcl/hclparse style the table's configuration always has.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-server/internal/game"
)

// File is the decoded shape of a table's .hcl configuration file.
type File struct {
	Table TableConfig `hcl:"table,block"`
}

// TableConfig mirrors game.Settings with HCL tags and optional fields, so
// an operator only has to name what they want to override.
type TableConfig struct {
	MaxPlayers     int `hcl:"max_players,optional"`
	MaxUsers       int `hcl:"max_users,optional"`
	BuyIn          int `hcl:"buy_in,optional"`
	SmallBlind     int `hcl:"small_blind,optional"`
	BigBlind       int `hcl:"big_blind,optional"`
	ConnectTimeout int `hcl:"connect_timeout,optional"`
	StepTimeout    int `hcl:"step_timeout,optional"`
	ActionTimeout  int `hcl:"action_timeout,optional"`
}

// Default returns a File carrying game.DefaultSettings.
func Default() *File {
	d := game.DefaultSettings()
	return &File{Table: TableConfig{
		MaxPlayers:     d.MaxPlayers,
		MaxUsers:       d.MaxUsers,
		BuyIn:          int(d.BuyIn),
		SmallBlind:     int(d.MinSmallBlind),
		BigBlind:       int(d.MinBigBlind),
		ConnectTimeout: d.ConnectTimeout,
		StepTimeout:    d.StepTimeout,
		ActionTimeout:  d.ActionTimeout,
	}}
}

// Load reads filename as HCL, falling back to Default if the file does
// not exist, and filling any zero-valued field from the default.
func Load(filename string) (*File, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parsing %s: %s", filename, diags.Error())
	}

	var f File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("config: decoding %s: %s", filename, diags.Error())
	}

	d := Default().Table
	if f.Table.MaxPlayers == 0 {
		f.Table.MaxPlayers = d.MaxPlayers
	}
	if f.Table.MaxUsers == 0 {
		f.Table.MaxUsers = d.MaxUsers
	}
	if f.Table.BuyIn == 0 {
		f.Table.BuyIn = d.BuyIn
	}
	if f.Table.SmallBlind == 0 {
		f.Table.SmallBlind = d.SmallBlind
	}
	if f.Table.BigBlind == 0 {
		f.Table.BigBlind = d.BigBlind
	}
	if f.Table.ConnectTimeout == 0 {
		f.Table.ConnectTimeout = d.ConnectTimeout
	}
	if f.Table.StepTimeout == 0 {
		f.Table.StepTimeout = d.StepTimeout
	}
	if f.Table.ActionTimeout == 0 {
		f.Table.ActionTimeout = d.ActionTimeout
	}

	return &f, nil
}

// Settings converts the decoded file into the game package's own type.
func (f *File) Settings() game.Settings {
	t := f.Table
	return game.Settings{
		MaxPlayers:     t.MaxPlayers,
		MaxUsers:       t.MaxUsers,
		BuyIn:          uint32(t.BuyIn),
		MinSmallBlind:  uint32(t.SmallBlind),
		MinBigBlind:    uint32(t.BigBlind),
		ConnectTimeout: t.ConnectTimeout,
		StepTimeout:    t.StepTimeout,
		ActionTimeout:  t.ActionTimeout,
	}
}

// Validate rejects a configuration the table could not seat a hand with.
func (f *File) Validate() error {
	t := f.Table
	if t.MaxPlayers < 2 || t.MaxPlayers > 10 {
		return fmt.Errorf("config: max_players must be between 2 and 10, got %d", t.MaxPlayers)
	}
	if t.SmallBlind <= 0 {
		return fmt.Errorf("config: small_blind must be positive")
	}
	if t.BigBlind <= t.SmallBlind {
		return fmt.Errorf("config: big_blind must exceed small_blind")
	}
	if t.BuyIn < t.BigBlind {
		return fmt.Errorf("config: buy_in must be at least one big blind")
	}
	return nil
}
