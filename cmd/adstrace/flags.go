package main

import (
	"flag"
	"fmt"
	"os"
)

type AppFlags struct {
	DomainsFile      string
	GlobalConfigFile string
	ProgressDBPath   string
	OutputPath       string
	StartDate        string
	EndDate          string
	SleepMinMillis   int
	SleepMaxMillis   int
}

func ParseFlags() AppFlags {
	domainsFile := flag.String("domains", "", "Path to a text file containing one domain per line. Blank lines and #-comments are skipped.")
	domainsFileAlias := flag.String("d", "", "Alias for -domains")

	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	progressDBPath := flag.String("progress-db", "", "Path to the SQLite progress database (overrides config file if set).")
	progressDBPathAlias := flag.String("p", "", "Alias for -progress-db")

	outputPath := flag.String("output", "", "Path of the HTML report artifact (overrides config file if set).")
	outputPathAlias := flag.String("o", "", "Alias for -output")

	startDate := flag.String("start-date", "", "Analysis start date as YYYYMMDD for domains with no recorded run state (overrides config file if set).")
	endDate := flag.String("end-date", "", "Analysis end date as YYYYMMDD; defaults to today (overrides config file if set).")

	sleepMin := flag.Int("sleep-min", -1, "Lower bound of the politeness sleep between archive requests, milliseconds (overrides config file if set).")
	sleepMax := flag.Int("sleep-max", -1, "Upper bound of the politeness sleep between archive requests, milliseconds (overrides config file if set).")

	flag.Parse()

	flags := AppFlags{
		StartDate:      *startDate,
		EndDate:        *endDate,
		SleepMinMillis: *sleepMin,
		SleepMaxMillis: *sleepMax,
	}

	if *domainsFile != "" {
		flags.DomainsFile = *domainsFile
	} else if *domainsFileAlias != "" {
		flags.DomainsFile = *domainsFileAlias
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	if *progressDBPath != "" {
		flags.ProgressDBPath = *progressDBPath
	} else if *progressDBPathAlias != "" {
		flags.ProgressDBPath = *progressDBPathAlias
	}

	if *outputPath != "" {
		flags.OutputPath = *outputPath
	} else if *outputPathAlias != "" {
		flags.OutputPath = *outputPathAlias
	}

	if flags.DomainsFile == "" {
		fmt.Fprintln(os.Stderr, "[FATAL] --domains argument is required")
		os.Exit(1)
	}

	return flags
}
