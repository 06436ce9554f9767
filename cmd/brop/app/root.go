package app

import (
	"github.com/spf13/cobra"
)

// NewBropCommand creates the root command for the brop tool.
func NewBropCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brop",
		Short: "A Blind Return-Oriented Programming exploration client.",
		Long: `brop drives a blind ROP attack against a remote service with a stack
buffer overflow: it discovers the overflow geometry, recovers the stack
canary and saved return address, harvests gadgets, classifies a BROP
gadget and a strcmp-like PLT entry, and can leak the target binary over
the same socket.`,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewDumpCommand())

	return cmd
}
