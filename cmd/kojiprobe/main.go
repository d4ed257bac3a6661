// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command kojiprobe checks connectivity to a Koji hub and runs simple
// build queries against it.
//
//	kojiprobe [-config probe.toml] [-hub URL] [-user NAME] [-debug] COMMAND [ARGS]
//
// Commands:
//
//	hello                       greet the hub (default)
//	latest TAG PACKAGE          latest build of PACKAGE in TAG
//	build ID|NVR                build details
//	tagged [flags] TAG          builds tagged with TAG
//	session                     local and hub-side view of the session
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/luxfi/koji"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "kojiprobe: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("kojiprobe", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	hubURL := fs.String("hub", "", "hub XML-RPC URL")
	user := fs.String("user", "", "log in as this user (password from config or $"+EnvPassword+")")
	debug := fs.Bool("debug", false, "trace XML-RPC traffic")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := defaultProbeConfig()
	if *configPath != "" {
		loaded, err := loadProbeConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyEnvOverrides(&cfg)
	if *hubURL != "" {
		cfg.HubURL = *hubURL
	}
	if *user != "" {
		cfg.Username = *user
	}
	if *debug {
		cfg.Debug = true
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	opts := []koji.Option{
		koji.WithLogger(logger),
		koji.WithUserAgent(cfg.UserAgent),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, koji.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}
	client, err := koji.New(cfg.HubURL, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if cfg.Username != "" {
		if _, err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return err
		}
		defer func() {
			if err := client.Logout(ctx); err != nil {
				logger.Warn("logout failed", zap.Error(err))
			}
		}()
	}

	cmd := fs.Args()
	if len(cmd) == 0 {
		cmd = []string{"hello"}
	}
	return dispatch(ctx, client, cmd[0], cmd[1:], out)
}

func dispatch(ctx context.Context, client *koji.Client, name string, args []string, out io.Writer) error {
	switch name {
	case "hello":
		msg, err := client.Ping(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg)
		return nil

	case "latest":
		if len(args) != 2 {
			return errors.New("usage: latest TAG PACKAGE")
		}
		rec, err := client.LatestBuild(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printRecord(out, rec)
		return nil

	case "build":
		if len(args) != 1 {
			return errors.New("usage: build ID|NVR")
		}
		rec, err := client.BuildInfo(ctx, koji.ParseBuildID(args[0]))
		if err != nil {
			return err
		}
		printRecord(out, rec)
		return nil

	case "tagged":
		return tagged(ctx, client, args, out)

	case "session":
		local, ok := client.Session()
		if !ok {
			local = "no active session"
		}
		fmt.Fprintf(out, "local: %s\n", local)
		remote, err := client.ShowSession(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "hub: %s\n", remote)
		return nil

	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func tagged(ctx context.Context, client *koji.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tagged", flag.ContinueOnError)
	pkg := fs.String("package", "", "only builds of this package")
	owner := fs.String("owner", "", "only builds by this owner")
	typ := fs.String("type", "", "only builds of this type (rpm, maven, image, ...)")
	latest := fs.Bool("latest", false, "only the latest build of each package")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: tagged [-package P] [-owner O] [-type T] [-latest] TAG")
	}

	q := koji.NewBuildQuery().Tag(fs.Arg(0)).Latest(*latest)
	if *pkg != "" {
		q.Package(*pkg)
	}
	if *owner != "" {
		q.Owner(*owner)
	}
	if *typ != "" {
		q.Type(*typ)
	}

	recs, err := client.ListTaggedBuilds(ctx, q.Build())
	if err != nil {
		return err
	}
	for _, rec := range recs {
		fmt.Fprintln(out, rec.NVR())
	}
	fmt.Fprintf(out, "%d build(s)\n", len(recs))
	return nil
}

func printRecord(out io.Writer, rec koji.BuildRecord) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s: %s\n", k, rec[k])
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
