package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	defs "cellrun/definitions"
	log "cellrun/logger"
	"cellrun/pkg/configstack"
	"cellrun/pkg/driver"
	"cellrun/pkg/tracer"
)

// Version injected in Makefile.
var Version = "dev"

var (
	connectURI string
	debugMode  bool

	traceProv *sdktrace.TracerProvider
)

func main() {
	root := &cobra.Command{
		Use:           "cellrun",
		Short:         "Manage Jailhouse cells through the jailhouse administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}
	root.PersistentFlags().StringVarP(&connectURI, "connect", "c", "",
		"connection URI, e.g. jailhouse:///usr/local/sbin/jailhouse")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	root.AddCommand(
		listCmd(),
		domCmd("dominfo", "Show state and CPU count of a cell", runDomInfo),
		domCmd("domstate", "Show the state of a cell", runDomState),
		domCmd("dumpxml", "Dump a minimal XML description of a cell", runDumpXML),
		domCmd("start", "Start a loaded cell", runStart),
		domCmd("shutdown", "Shut a cell down", runShutdown),
		domCmd("destroy", "Tear a cell down (it must be re-created afterwards)", runDestroy),
		capabilitiesCmd(),
		nodeinfoCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) error {
	cfg, err := configstack.Load()
	if err != nil {
		return err
	}

	logCfg := &log.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		Debug:  cfg.Debug || debugMode,
	}
	if err := log.Init(logCfg); err != nil {
		return err
	}

	if cfg.TraceEndpoint != "" {
		tp, err := tracer.NewTracerProvider(ctx, tracer.Config{
			ServiceName: "cellrun",
			Endpoint:    cfg.TraceEndpoint,
			Insecure:    cfg.TraceInsecure,
		})
		if err != nil {
			return err
		}
		traceProv = tp
	}

	if connectURI == "" {
		connectURI = defs.URIScheme + "://"
		if cfg.Binary != "" {
			connectURI = defs.URIScheme + "://" + cfg.Binary
		}
	}
	return nil
}

func teardown() {
	if traceProv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := traceProv.Shutdown(ctx); err != nil {
			log.Debugf("trace provider shutdown: %v", err)
		}
	}
}

func withConnection(ctx context.Context, fn func(*driver.Connection) error) error {
	conn, err := driver.OpenURI(ctx, connectURI)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

func listCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cells",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd.Context(), func(conn *driver.Connection) error {
				domains, err := conn.ListAllDomains(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 2, 8, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTATE\tUUID")
				for _, d := range domains {
					state, err := conn.GetState(cmd.Context(), d)
					if err != nil {
						continue
					}
					if !all && state != driver.DomainRunning {
						continue
					}
					id := "-"
					if d.ID != defs.InactiveDomainID {
						id = fmt.Sprintf("%d", d.ID)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, d.Name, state, d.UUID)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive cells")
	return cmd
}

func domCmd(use, short string, run func(context.Context, *driver.Connection, driver.Domain) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd.Context(), func(conn *driver.Connection) error {
				dom, err := conn.LookupByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return run(cmd.Context(), conn, dom)
			})
		},
	}
}

func runDomInfo(ctx context.Context, conn *driver.Connection, dom driver.Domain) error {
	info, err := conn.GetInfo(ctx, dom)
	if err != nil {
		return err
	}
	fmt.Printf("Name:       %s\n", dom.Name)
	fmt.Printf("UUID:       %s\n", dom.UUID)
	fmt.Printf("State:      %s\n", info.State)
	fmt.Printf("CPU(s):     %d\n", info.NrVirtCPU)
	return nil
}

func runDomState(ctx context.Context, conn *driver.Connection, dom driver.Domain) error {
	state, err := conn.GetState(ctx, dom)
	if err != nil {
		return err
	}
	fmt.Println(state)
	return nil
}

func runDumpXML(ctx context.Context, conn *driver.Connection, dom driver.Domain) error {
	xml, err := conn.GetXMLDesc(dom)
	if err != nil {
		return err
	}
	fmt.Print(xml)
	return nil
}

func runStart(ctx context.Context, conn *driver.Connection, dom driver.Domain) error {
	if err := conn.Create(ctx, dom); err != nil {
		return err
	}
	fmt.Printf("cell %s started\n", dom.Name)
	return nil
}

func runShutdown(ctx context.Context, conn *driver.Connection, dom driver.Domain) error {
	if err := conn.Shutdown(ctx, dom); err != nil {
		return err
	}
	fmt.Printf("cell %s shut down\n", dom.Name)
	return nil
}

func runDestroy(ctx context.Context, conn *driver.Connection, dom driver.Domain) error {
	if err := conn.Destroy(ctx, dom); err != nil {
		return err
	}
	fmt.Printf("cell %s destroyed\n", dom.Name)
	return nil
}

func capabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the capabilities document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnection(cmd.Context(), func(conn *driver.Connection) error {
				fmt.Println(conn.Capabilities())
				return nil
			})
		},
	}
}

func nodeinfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodeinfo",
		Short: "Print information about the management host",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := driver.GetNodeInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("CPU model:     %s\n", info.Model)
			fmt.Printf("CPU(s):        %d\n", info.CPUs)
			fmt.Printf("CPU MHz:       %d\n", info.MHz)
			fmt.Printf("NUMA cell(s):  %d\n", info.Nodes)
			fmt.Printf("Socket(s):     %d\n", info.Sockets)
			fmt.Printf("Core(s):       %d\n", info.Cores)
			fmt.Printf("Thread(s):     %d\n", info.Threads)
			fmt.Printf("Memory:        %d KiB\n", info.MemoryKiB)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cellrun version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("cellrun %s\n", Version)
			return nil
		},
	}
}
