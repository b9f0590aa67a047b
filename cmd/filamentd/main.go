package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/silkworks/filament/app"
	"github.com/silkworks/filament/pkg/eventstore/badger"
	"github.com/silkworks/filament/pkg/nostr/relayinfo"
	"github.com/silkworks/filament/pkg/slog"
)

const configFileName = "config.json"

var log, chk = slog.New(os.Stderr)

func main() {
	conf := app.GetDefaultConfig()
	arg.MustParse(conf)
	var err error
	var home string
	if home, err = os.UserHomeDir(); chk.E(err) {
		os.Exit(1)
	}
	dataDir := filepath.Join(home, "."+conf.Profile)
	chk.E(os.MkdirAll(dataDir, 0700))
	configPath := filepath.Join(dataDir, configFileName)
	if conf.InitCfgCmd != nil {
		if err = conf.Save(configPath); chk.E(err) {
			os.Exit(1)
		}
		log.I.Ln("wrote", configPath)
		return
	}
	// values from the config file fill in what the command line left at
	// defaults; flags given explicitly win because Load only touches fields
	// present in the file
	if _, err = os.Stat(configPath); err == nil {
		fileConf := &app.Config{}
		if err = fileConf.Load(configPath); !chk.E(err) {
			applyDefaults(conf, fileConf)
		}
	}
	if conf.LogLevel != "" {
		slog.SetLogLevel(slog.LevelFromName(conf.LogLevel))
	}
	db := &badger.Backend{Path: filepath.Join(dataDir, "events")}
	if err = db.Init(); chk.E(err) {
		log.F.F("unable to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()
	switch {
	case conf.Wipe != nil:
		if err = db.Wipe(); chk.E(err) {
			os.Exit(1)
		}
		log.I.Ln("database wiped")
		return
	case conf.ExportCmd != nil:
		runExport(db, conf.ExportCmd)
		return
	case conf.ImportCmd != nil:
		runImport(db, conf.ImportCmd)
		return
	}
	c, cancel := context.WithCancel(context.Background())
	inf := &relayinfo.T{
		Name:        conf.Name,
		Description: conf.Description,
		PubKey:      conf.Pubkey,
		Contact:     conf.Contact,
		Icon:        conf.Icon,
		Limitation: relayinfo.Limits{
			MaxMessageLength: app.MaxMessageSize,
			MaxLimit:         badger.DefaultMaxLimit,
			AuthRequired:     conf.AuthRequired,
		},
	}
	inf.AddNIPs(
		relayinfo.BasicProtocol,
		relayinfo.EventDeletion,
		relayinfo.RelayInformationDocument,
		relayinfo.CommandResults,
		relayinfo.Authentication,
		relayinfo.CountingResults,
	)
	if !conf.NoProtectedTags {
		inf.AddNIPs(relayinfo.ProtectedEvents)
	}
	rl := app.NewRelay(c, cancel, inf, conf)
	rl.StoreEvent = append(rl.StoreEvent, db.SaveEvent)
	rl.QueryEvents = append(rl.QueryEvents, db.QueryEvents)
	rl.CountEvents = append(rl.CountEvents, db.CountEvents)
	rl.DeleteEvent = append(rl.DeleteEvent, db.DeleteEvent)
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		log.I.Ln("interrupt received, shutting down")
		rl.Shutdown(context.Background())
	}()
	chk.E(rl.Start(conf.Listen))
}

// applyDefaults copies file values over fields the command line left at
// their defaults.
func applyDefaults(conf, file *app.Config) {
	def := app.GetDefaultConfig()
	if conf.Listen == def.Listen && file.Listen != "" {
		conf.Listen = file.Listen
	}
	if conf.Name == def.Name && file.Name != "" {
		conf.Name = file.Name
	}
	if conf.Description == "" {
		conf.Description = file.Description
	}
	if conf.Pubkey == "" {
		conf.Pubkey = file.Pubkey
	}
	if conf.Contact == "" {
		conf.Contact = file.Contact
	}
	if conf.Icon == "" {
		conf.Icon = file.Icon
	}
	if !conf.AuthRequired {
		conf.AuthRequired = file.AuthRequired
	}
	if !conf.NoProtectedTags {
		conf.NoProtectedTags = file.NoProtectedTags
	}
	if len(conf.Whitelist) == 0 {
		conf.Whitelist = file.Whitelist
	}
}

func runExport(db *badger.Backend, cmd *app.ExportCmd) {
	var err error
	var w io.WriteCloser = os.Stdout
	if cmd.ToFile != "" {
		if w, err = os.Create(cmd.ToFile); chk.E(err) {
			os.Exit(1)
		}
		defer func() { chk.E(w.Close()) }()
	}
	chk.E(db.Export(context.Background(), w))
}

func runImport(db *badger.Backend, cmd *app.ImportCmd) {
	var err error
	var count, total int
	if len(cmd.FromFile) == 0 {
		if count, err = db.Import(context.Background(),
			os.Stdin); chk.E(err) {
			os.Exit(1)
		}
		log.I.Ln("imported", count, "events")
		return
	}
	for _, name := range cmd.FromFile {
		var f *os.File
		if f, err = os.Open(name); chk.E(err) {
			continue
		}
		count, err = db.Import(context.Background(), f)
		chk.E(err)
		chk.E(f.Close())
		total += count
	}
	log.I.Ln("imported", total, "events")
}
