// FILE: cmd/confy/main.go

// Command confy inspects and edits TOML configuration documents.
//
//	confy <config-file|alias> -l [SECTION]
//	confy <config-file|alias> -g KEY
//	confy <config-file|alias> -s KEY VALUE
//
// The first argument is a document path or a short name resolved through
// the [aliases] table of ~/.confy.rc.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rtrimble13/confy"
)

const usageText = `usage: confy <config-file|alias> [-l [SECTION] | -g KEY | -s KEY VALUE]

actions:
  -l, --list [SECTION]   list sections, or variables in SECTION
  -g, --get KEY          print the value of KEY
  -s, --set KEY VALUE    set KEY to VALUE and save`

// rcFileName is the run-control file holding the alias table, looked up
// in the user's home directory.
const rcFileName = ".confy.rc"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// command is the parsed invocation: one document argument and exactly one
// action.
type command struct {
	config  string
	action  string // "list", "get" or "set"
	section string
	key     string
	value   string
}

func (c *command) setAction(name string) error {
	if c.action != "" {
		return fmt.Errorf("only one of --list, --get or --set may be given")
	}
	c.action = name
	return nil
}

// parseCommand scans the raw arguments. The section argument of --list is
// optional; --get takes one argument and --set takes two.
func parseCommand(args []string) (*command, error) {
	cmd := &command{}

	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "-l" || arg == "--list":
			if err := cmd.setAction("list"); err != nil {
				return nil, err
			}
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				cmd.section = args[i+1]
				i++
			}
		case arg == "-g" || arg == "--get":
			if err := cmd.setAction("get"); err != nil {
				return nil, err
			}
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--get requires a KEY argument")
			}
			cmd.key = args[i+1]
			i++
		case arg == "-s" || arg == "--set":
			if err := cmd.setAction("set"); err != nil {
				return nil, err
			}
			if i+2 >= len(args) {
				return nil, fmt.Errorf("--set requires KEY and VALUE arguments")
			}
			cmd.key = args[i+1]
			cmd.value = args[i+2]
			i += 2
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)
		default:
			if cmd.config != "" {
				return nil, fmt.Errorf("unexpected argument: %s", arg)
			}
			cmd.config = arg
		}
		i++
	}

	if cmd.config == "" {
		return nil, fmt.Errorf("config file or alias is required")
	}
	if cmd.action == "" {
		return nil, fmt.Errorf("one of --list, --get or --set is required")
	}

	return cmd, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd, err := parseCommand(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, usageText)
		return 1
	}

	configPath := resolveConfigPath(cmd.config, stderr)

	cfg := confy.New()
	cfg.SetWarnHandler(func(format string, args ...any) {
		fmt.Fprintf(stderr, "Warning: "+format+"\n", args...)
	})

	if err := cfg.Load(configPath); err != nil {
		// A set on a missing document starts empty and creates it on save.
		if !errors.Is(err, confy.ErrConfigNotFound) || cmd.action != "set" {
			if errors.Is(err, confy.ErrConfigNotFound) {
				fmt.Fprintf(stderr, "Error: Configuration file not found: %s\n", configPath)
			} else {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return 1
		}
	}

	switch cmd.action {
	case "list":
		runList(cfg, cmd.section, stdout)
	case "get":
		value, ok := cfg.Get(cmd.key)
		if !ok {
			fmt.Fprintf(stderr, "Key '%s' not found.\n", cmd.key)
			return 1
		}
		fmt.Fprintf(stdout, "%v\n", value)
	case "set":
		cfg.Set(cmd.key, parseValue(cmd.value))
		if err := cfg.Save(configPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Set '%s' = '%s'\n", cmd.key, cmd.value)
	}

	return 0
}

func runList(cfg *confy.Config, section string, stdout io.Writer) {
	if section != "" {
		variables := cfg.ListVariables(section)
		if len(variables) == 0 {
			fmt.Fprintf(stdout, "No variables found in section '%s' or section does not exist.\n", section)
			return
		}
		fmt.Fprintf(stdout, "Variables in section '%s':\n", section)
		for _, v := range variables {
			fmt.Fprintf(stdout, "  %s\n", v)
		}
		return
	}

	sections := cfg.ListSections()
	if len(sections) == 0 {
		fmt.Fprintln(stdout, "No sections found.")
		return
	}
	fmt.Fprintln(stdout, "Sections:")
	for _, s := range sections {
		fmt.Fprintf(stdout, "  %s\n", s)
	}
}

// resolveConfigPath maps a document argument through the alias table,
// falling back to the argument itself.
func resolveConfigPath(arg string, stderr io.Writer) string {
	if path, ok := loadAliases(stderr)[arg]; ok {
		return path
	}
	return arg
}

// loadAliases reads the [aliases] table from ~/.confy.rc. A missing file
// means no aliases; an unreadable or malformed file is warned about and
// ignored.
func loadAliases(stderr io.Writer) map[string]string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	rcPath := filepath.Join(home, rcFileName)

	raw, err := os.ReadFile(rcPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "Warning: Could not load aliases from %s: %v\n", rcPath, err)
		}
		return nil
	}

	var rc struct {
		Aliases map[string]string `toml:"aliases"`
	}
	if err := toml.Unmarshal(raw, &rc); err != nil {
		fmt.Fprintf(stderr, "Warning: Could not load aliases from %s: %v\n", rcPath, err)
		return nil
	}

	return rc.Aliases
}

// parseValue interprets a set value as bool, integer or float when
// possible, falling back to the raw string.
func parseValue(s string) any {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
