package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective map parameters",
	Long:  `Print the map parameters after merging defaults, the config file, environment and flags, as YAML.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadMapConfig(viper.GetViper())
		if err != nil {
			return err
		}
		return writeConfigYAML(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
