// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// cncheck validates captured analytics payloads against the event schema

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/claimnavigator/cn-analytics/pkg/check"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
	})
}

func usage() {
	fmt.Println("Usage: cncheck [-verbose] filepath...")
	flag.PrintDefaults()
}

func main() {

	// parse the command line
	verbose := flag.Bool("verbose", false, "if set, display info messages; if not set, display only warnings and errors.")
	flag.Parse()

	// the verbose flag acts on the info level
	if !*verbose {
		log.SetLevel(log.WarnLevel)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	failed := 0
	for _, filepath := range flag.Args() {
		bytes, err := os.ReadFile(filepath)
		if err != nil {
			log.Fatal("Error: ", err)
		}
		fmt.Println("Checking ", filepath)

		if err := check.Validate(bytes); err != nil {
			log.Errorf("%s: %v", filepath, err)
			failed++
			continue
		}
		log.Infof("%s is a valid analytics event", filepath)
	}
	if failed > 0 {
		os.Exit(2)
	}
}
