package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "framekit",
		Short: "framekit - encode, decode and relay profile framed messages",
		Long: `framekit works with binary frames described by a wire profile: optional
start bytes, an ordered header, the payload and a Fletcher-16 checksum.
It can inspect profiles, build and parse frames, and serve framed streams.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a framekit config file")
	rootCmd.PersistentFlags().String("profile", "", "Wire profile name (overrides the config)")
	rootCmd.PersistentFlags().StringSlice("length", nil, "Payload length for lengthless profiles, as msg_id=length")

	rootCmd.AddCommand(newProfilesCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newListenCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
