package main

import (
	. "github.com/spf13/pflag"
	"golang.org/x/term"
	"os"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

var pConfig, pSection, pKeys, pSeed, pBackend = "", "", "", "", ""
var pBudget, pNoCodesDefault = uint64(0), false
var pHelp, pDigest, pJSON, pManifest, pNoCodes, pQuiet, pString, pTime, pVerbose bool
var star, yell, purp, und, zero = "", "\033[33m", "\033[35m", "\033[4m", "\033[0m"

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pNoCodesDefault = true
	}
	pNoCodes = pNoCodesDefault
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--no-codes=false":
			pNoCodes = false
		case "--quiet", "--quiet=true":
			pNoCodes, pQuiet = true, true
		case "--json", "--json=true", "-j":
			pNoCodes = true
		case "--no-codes", "--no-codes=true":
			pNoCodes = true
		}
	}
	if pNoCodes {
		yell, purp, und, zero = "", "", "", ""
	}

	BoolVarP(&pHelp, "help", "h", false,
		purp+"print this help menu"+zero+n)

	StringVarP(&pBackend, "backend", "b", "reference",
		purp+"digest backend: reference or constrained"+zero)

	Uint64Var(&pBudget, "budget", 0,
		purp+"fail any line costing the constrained backend more than"+zero+
			n+purp+"this many triggers"+zero+" (0 disables)")

	StringVarP(&pConfig, "config", "c", "",
		purp+"YAML, TOML or JSONC file of addresses, messages and"+zero+
			n+purp+"patterns"+zero)

	BoolVarP(&pDigest, "digest", "d", false,
		purp+"only print the keyed digest of each line"+zero)

	BoolVarP(&pJSON, "json", "j", false,
		purp+"print one JSON object per line"+zero+" (enables --no-codes)")

	StringVarP(&pKeys, "keys", "k", "",
		purp+"pin the digest keys as K0,K1"+zero+" (base-prefixed integers)")

	BoolVarP(&pManifest, "manifest", "m", false,
		purp+"print the compiled configuration before any results"+zero)

	Bool("no-codes", pNoCodesDefault,
		purp+"print to console w/o formatting codes or simplified"+zero+
			n+purp+"filepaths"+zero)

	Bool("quiet", false,
		purp+"suppress log output and print ONLY results"+zero+
			n+"(enables --no-codes)")

	StringVar(&pSection, "section", "chatEvent",
		purp+"table of the config file holding the settings"+zero)

	StringVar(&pSeed, "seed", "",
		purp+"derive the digest keys from this passphrase"+zero)

	BoolVarP(&pString, "string", "s", false,
		purp+"process arguments instead as chat lines"+zero)

	BoolVarP(&pTime, "time", "t", false,
		purp+"print time taken to classify each line"+zero)

	BoolVarP(&pVerbose, "verbose", "v", false,
		purp+"log every configured message"+zero)

	/* Order flags alphabetically except for help, which is hoisted to the top. */
	CommandLine.SortFlags = false
	Parse()
}
