package app

import (
	"encoding/json"
	"errors"
	"os"
)

type InitCfg struct{}
type WipeDB struct{}

type ExportCmd struct {
	ToFile string `arg:"-f,--tofile" help:"write to file instead of stdout"`
}

type ImportCmd struct {
	FromFile []string `arg:"-f,--fromfile,separate" help:"read from files instead of stdin (can use flag repeatedly for multiple files)"`
}

// Config is the process-wide relay configuration, read-only after startup.
type Config struct {
	InitCfgCmd *InitCfg   `arg:"subcommand:initcfg" json:"-" help:"initialize relay configuration files"`
	ExportCmd  *ExportCmd `arg:"subcommand:export" json:"-" help:"export database as line structured JSON"`
	ImportCmd  *ImportCmd `arg:"subcommand:import" json:"-" help:"import data from line structured JSON"`
	Wipe       *WipeDB    `arg:"subcommand:wipedb" json:"-" help:"empties the local event store"`

	Listen      string `arg:"-l,--listen" json:"listen" help:"network address to listen on"`
	Profile     string `arg:"-p,--profile" json:"-" help:"profile directory name to use for storage"`
	Name        string `arg:"-n,--name" json:"name" help:"name of relay for the information document"`
	Description string `arg:"-d,--description" json:"description" help:"description of relay for the information document"`
	Pubkey      string `arg:"--pubkey" json:"pubkey" help:"public key of relay operator"`
	Contact     string `arg:"-c,--contact" json:"contact,omitempty" help:"non-nostr relay operator contact details"`
	Icon        string `arg:"-i,--icon" json:"icon" help:"icon to show on relay information pages"`

	// AuthRequired gates privileged reads and protected tag writes behind
	// NIP-42; a challenge is sent as soon as a client connects.
	AuthRequired bool `arg:"-a,--auth" json:"auth_required" help:"require NIP-42 authentication"`
	// NoProtectedTags disables NIP-70 enforcement entirely.
	NoProtectedTags bool `arg:"--noprotected" json:"no_protected_tags" help:"disable NIP-70 protected tag enforcement"`

	// Whitelist permits ONLY inbound connections from specified IP
	// addresses.
	Whitelist []string `arg:"-w,--whitelist,separate" json:"ip_whitelist" help:"IP addresses that are exclusively allowed to access"`

	LogLevel string `arg:"--loglevel" json:"-" help:"set log level [off,fatal,error,warn,info,debug,trace] (can also use FILAMENT_LOG environment variable)"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Listen:   "0.0.0.0:3334",
		Profile:  "filament",
		Name:     "filament relay",
		LogLevel: "info",
	}
}

func (c *Config) Save(filename string) (err error) {
	if c == nil {
		err = errors.New("cannot save nil relay config")
		log.E.Ln(err)
		return
	}
	var b []byte
	if b, err = json.MarshalIndent(c, "", "    "); chk.E(err) {
		return
	}
	if err = os.WriteFile(filename, b, 0600); chk.E(err) {
		return
	}
	return
}

func (c *Config) Load(filename string) (err error) {
	if c == nil {
		err = errors.New("cannot load into nil config")
		chk.E(err)
		return
	}
	var b []byte
	if b, err = os.ReadFile(filename); err != nil {
		return
	}
	if err = json.Unmarshal(b, c); chk.E(err) {
		return
	}
	return
}
