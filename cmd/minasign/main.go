// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/aplane-algo/minasign/internal/signer/rpcsigner"
	"github.com/aplane-algo/minasign/internal/util"
	"github.com/aplane-algo/minasign/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, "minasign - Mina transaction signing toolkit\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] keygen\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] derive [-key-file f]\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] verify-keypair <keypair.json|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] address raw|from-raw|check <value>\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] memo encode|decode <value>\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] sign message [-key-file f] <text>\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] sign payment|delegation [-key-file f] <tx.json|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] verify message|payment|delegation <signed.json|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] hash payment|delegation <signed.json|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] rosetta [-hash] <doc.json|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] describe <signed.json|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] script [-watch] <file.js|->\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] script -e <expression>\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] repl\n")
	fmt.Fprintf(os.Stderr, "  minasign [options] config\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  minasign -network mainnet sign payment payment.json > signed.json\n")
	fmt.Fprintf(os.Stderr, "  minasign hash payment signed.json\n")
	fmt.Fprintf(os.Stderr, "  minasign rosetta -hash rosetta.json\n")
	fmt.Fprintf(os.Stderr, "  minasign memo encode \"invoice 42\"\n")
}

func main() {
	printVersion := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("d", "", "Data directory (default: ~/.minasign or MINASIGN_DATA)")
	network := flag.String("network", "", "Network (mainnet, testnet); default from config")
	encoder := flag.String("encoder", "", "Hash encoder (binprot, msgpack); default from config")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); default from config")
	flag.Usage = usage
	flag.Parse()

	if *printVersion {
		fmt.Printf("minasign %s\n", version.String())
		os.Exit(0)
	}

	resolvedDataDir := util.GetDataDir(*dataDir)
	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level := config.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	util.InitLogger(level)

	a := newApp(config, resolvedDataDir)
	if *network != "" {
		a.network = *network
	}
	if *encoder != "" {
		a.encoder = *encoder
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := a.run(args); err != nil {
		if err == errUsage {
			flag.Usage()
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
