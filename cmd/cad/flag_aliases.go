package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var taskFlagAliases = map[string]string{
	"est":  "estimate",
	"cat":  "category",
	"on":   "date",
	"when": "date",
}

var reviewFlagAliases = map[string]string{
	"body":  "content",
	"notes": "content",
	"diff":  "difficulty",
}

func addTaskFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		setFlagAliases(cmd.Flags(), taskFlagAliases)
	}
}

func addReviewFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		setFlagAliases(cmd.Flags(), reviewFlagAliases)
	}
}

func setFlagAliases(flags *pflag.FlagSet, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}

	normalize := flags.GetNormalizeFunc()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		return normalize(f, name)
	})
}
