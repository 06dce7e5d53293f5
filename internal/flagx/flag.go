// Package flagx lets independent configuration layers share os.Args: each
// layer picks out the flags it owns and parses only those.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnv names the environment variable consulted when no -c/-config flag
// is given.
const ConfigEnv = "CONFIG"

// Pick returns the arguments that belong to the named flags, in order.
// Names are given without dashes; "-n v", "--n v", "-n=v" and "--n=v" are all
// recognised. A value is only taken from the next argument when that argument
// does not itself look like a flag.
func Pick(args []string, names ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}

	picked := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, hasValue, ok := flagName(args[i])
		if !ok || !owned[name] {
			continue
		}

		picked = append(picked, args[i])
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			picked = append(picked, args[i+1])
			i++
		}
	}
	return picked
}

// flagName splits "-name", "--name" or "-name=value" into its name and
// whether the value is inline.
func flagName(arg string) (name string, inline bool, ok bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false, false
	}
	name = strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// falling back to $CONFIG. An empty result means no file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Pick(args, "c", "config"))

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
