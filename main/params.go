// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey     = "version"
	httpHostKey    = "http-host"
	httpPortKey    = "http-port"
	dbDirKey       = "db-dir"
	genesisFileKey = "genesis-file"
	configFileKey  = "config-file"
	logLevelKey    = "log-level"

	envPrefix = "LEDGERVM"
)

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("ledgervm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints the version and quits")
	fs.String(httpHostKey, "127.0.0.1", "Address the HTTP API listens on")
	fs.Uint(httpPortKey, 9650, "Port the HTTP API listens on")
	fs.String(dbDirKey, "", "Database directory. State is kept in memory if empty")
	fs.String(genesisFileKey, "", "Path to the genesis JSON document")
	fs.String(configFileKey, "", "Path to the VM JSON config. Defaults are used if empty")
	fs.String(logLevelKey, "info", "Log level: crit, error, warn, info, debug or trace")

	return fs
}

// getViper returns the viper environment for the node binary. Every flag can
// also be set through an environment variable such as LEDGERVM_HTTP_PORT.
func getViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := buildFlagSet()
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	return v, nil
}
