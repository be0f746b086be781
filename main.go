package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"ttycodec/capability"
	"ttycodec/config"
	"ttycodec/feature"
	"ttycodec/inspect"
	"ttycodec/log"
	"ttycodec/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version = "0.3.0"

	termFlag    string
	deviceFlag  string
	derivedFlag bool
	programFlag string
	fromEnvFlag bool
	saveFlag    bool
	outFlag     string
	findFlag    string
	tomlFlag    bool
	ptyFlag     bool
	dumpFlag    bool
	sizeFlag    string

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)

	rootCmd = &cobra.Command{
		Use:   "ttycodec",
		Short: "ttycodec - inspect and exercise terminal capability handling",
	}

	capsCmd = &cobra.Command{
		Use:   "caps [term]",
		Short: "List the capabilities of a terminal as the codec sees them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			name := cfg.Term(firstArg(args, termName()))
			reg := session.NewRegistry(cfg, nil)
			cat, err := reg.Acquire(name)
			if err != nil {
				return err
			}
			defer reg.Release(cat)

			var set feature.Set
			for _, list := range cfg.FeaturesFor(name) {
				feature.Add(&set, list, ":,")
			}
			feature.Apply(cat, set)

			fmt.Println(headerStyle.Render(cat.Name()))
			fmt.Printf("flags: %s\n", cat.Flags())
			if derivedFlag {
				fmt.Printf("derived: %s\n", cat.DerivedFlags())
			}
			if set != 0 {
				fmt.Printf("features: %s\n", set)
			}
			fmt.Println()
			for _, e := range cat.Entries() {
				fmt.Printf("%s %s %s\n",
					nameStyle.Render(padding.String(e.ID.Name(), 8)),
					dimStyle.Render(padding.String(e.Kind.String(), 6)),
					entryValue(e))
			}
			return nil
		},
	}

	featuresCmd = &cobra.Command{
		Use:   "features [names]",
		Short: "List terminal features, or resolve a feature list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			var set feature.Set
			if len(args) > 0 {
				feature.Add(&set, args[0], ":,")
			}
			if programFlag != "" {
				feature.Default(&set, programFlag, 0)
			}
			if fromEnvFlag {
				switch termenv.EnvColorProfile() {
				case termenv.TrueColor:
					feature.Add(&set, "RGB,256", ",")
				case termenv.ANSI256:
					feature.Add(&set, "256", ",")
				}
			}
			if len(args) > 0 || programFlag != "" || fromEnvFlag {
				fmt.Println(set)
				return nil
			}

			width := 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
				width = w
			}
			for _, f := range feature.All() {
				desc := wordwrap.String(f.Description, width-16)
				desc = strings.ReplaceAll(desc, "\n", "\n"+strings.Repeat(" ", 16))
				fmt.Printf("%s%s\n", nameStyle.Render(padding.String(f.Name, 16)), desc)
			}
			fmt.Println()
			fmt.Println(dimStyle.Render("defaults for: " + strings.Join(feature.Terminals(), ", ")))
			return nil
		},
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Draw a test screen through the codec",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			if ptyFlag {
				cfg.Probe = false
				width, height, err := parseSize(sizeFlag)
				if err != nil {
					return err
				}
				lines, raw, err := demoInPty(cfg, termName(), width, height)
				if err != nil {
					return err
				}
				if dumpFlag {
					fmt.Println(capability.Escape(string(raw)))
					return nil
				}
				fmt.Println(lines)
				return nil
			}

			c, err := session.Open(deviceFlag, termName(), session.Options{Config: cfg, State: config.LoadState()})
			if err != nil {
				return err
			}
			w, h := c.Output.Size()
			drawDemo(c.Output, w, h)
			if dumpFlag {
				raw := append([]byte(nil), c.Output.Bytes()...)
				c.Output.ResetBuffer()
				c.Close()
				fmt.Println(capability.Escape(string(raw)))
				return nil
			}
			if err := c.Flush(); err != nil {
				c.Close()
				return err
			}
			time.Sleep(2 * time.Second)
			c.Output.ClearScreen()
			return c.Close()
		},
	}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Ask the terminal who it is and which features it has",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(true)
			defer log.Close()

			cfg := config.LoadConfig()
			cfg.Probe = false
			var state *config.State
			if saveFlag {
				state = config.LoadState()
			}
			c, err := session.Open(deviceFlag, termName(), session.Options{Config: cfg, State: state})
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ProbeTimeout())
			defer cancel()
			perr := c.QueryFeatures(ctx)

			fmt.Printf("terminal: %s\n", c.Name)
			fmt.Printf("program:  %s\n", orNone(c.Program()))
			fmt.Printf("features: %s\n", orNone(c.Features().String()))
			fmt.Printf("utf8:     %v\n", c.Output.UTF8())
			if perr != nil {
				fmt.Println(dimStyle.Render(perr.Error()))
			}
			return nil
		},
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print a JSON snapshot of a connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			cfg.Probe = false
			c, err := session.Open(deviceFlag, termName(), session.Options{Config: cfg, State: config.LoadState()})
			if err != nil {
				return err
			}
			defer c.Close()

			snapshot := inspect.Capture(c)
			if findFlag != "" {
				node, err := findComponent(snapshot, findFlag)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(node, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			if outFlag != "" {
				return inspect.WriteSnapshotToPath(snapshot, outFlag)
			}
			if err := inspect.WriteSnapshot(snapshot); err != nil {
				return err
			}
			data, err := inspect.Marshal(snapshot)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}

			var data []byte
			if tomlFlag {
				data, err = config.MarshalTOML(cfg)
			} else {
				data, err = json.MarshalIndent(cfg, "", "  ")
			}
			if err != nil {
				return err
			}
			fmt.Printf("Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), data)

			state := config.LoadState()
			fmt.Printf("State: %s (%d cached detections)\n", filepath.Join(configDir, config.StateFileName), len(state.Detections))
			fmt.Printf("TERM: %s\n", orNone(os.Getenv("TERM")))
			fmt.Printf("Colour profile: %s\n", profileName(termenv.EnvColorProfile()))
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ttycodec",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ttycodec version %s\n", version)
		},
	}
)

func termName() string {
	if termFlag != "" {
		return termFlag
	}
	return os.Getenv("TERM")
}

func firstArg(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func entryValue(e capability.Entry) string {
	switch e.Kind {
	case capability.KindFlag:
		return "true"
	case capability.KindNumber:
		return fmt.Sprint(e.Number)
	}
	return capability.Escape(e.String)
}

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "truecolor"
	case termenv.ANSI256:
		return "256"
	case termenv.ANSI:
		return "16"
	}
	return "none"
}

// findComponent looks up a "type:id" query such as "capability:cup" in the
// snapshot tree.
func findComponent(s *inspect.Snapshot, query string) (*inspect.Node, error) {
	nodeType, id, _ := strings.Cut(query, ":")
	node := s.Components.Find(nodeType, id)
	if node == nil {
		return nil, fmt.Errorf("no %s %q in snapshot", nodeType, id)
	}
	return node, nil
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
	}
	return w, h, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&termFlag, "term", "t", "",
		"Terminal type to use instead of $TERM")
	rootCmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "",
		"Terminal device to open (default "+session.DefaultDevice+")")

	capsCmd.Flags().BoolVar(&derivedFlag, "derived", false, "Also print flags derived from the capabilities alone")
	featuresCmd.Flags().StringVarP(&programFlag, "program", "p", "",
		"Add the default features of a terminal program (e.g. 'XTerm', 'iTerm2')")
	featuresCmd.Flags().BoolVar(&fromEnvFlag, "from-env", false,
		"Add colour features implied by the environment (COLORTERM, TERM)")
	probeCmd.Flags().BoolVar(&saveFlag, "save", false, "Cache the result for later connections")
	inspectCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write the snapshot to a file")
	inspectCmd.Flags().StringVar(&findFlag, "find", "", "Print one element, such as 'capability:cup' or 'output'")
	debugCmd.Flags().BoolVar(&tomlFlag, "toml", false, "Print the config in TOML")
	demoCmd.Flags().BoolVar(&ptyFlag, "pty", false, "Draw into a pseudo terminal and print what it shows")
	demoCmd.Flags().BoolVar(&dumpFlag, "dump", false, "Print the escaped byte stream instead")
	demoCmd.Flags().StringVar(&sizeFlag, "size", "80x24", "Screen size for --pty")

	rootCmd.AddCommand(capsCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
