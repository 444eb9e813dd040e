package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hashapp/scout/internal/config"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage cascade policy files",
}

var policyInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a policy file with the default cascade settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WritePolicy(args[0], config.DefaultCascade()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", args[0])
		return nil
	},
}

var policyShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the effective cascade policy",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := cfg.Cascade
		if len(args) == 1 {
			p, err := config.LoadPolicy(args[0])
			if err != nil {
				return err
			}
			policy = p
		}
		out, err := json.MarshalIndent(policy, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal policy")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyShowCmd)
	rootCmd.AddCommand(policyCmd)
}
