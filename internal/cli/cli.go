package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandDaemon     Command = "daemon"
	CommandKeyDown    Command = "key-down"
	CommandKeyUp      Command = "key-up"
	CommandStart      Command = "start"
	CommandStop       Command = "stop"
	CommandStatus     Command = "status"
	CommandSetMode    Command = "set-mode"
	CommandRebind     Command = "rebind"
	CommandImport     Command = "import"
	CommandTranscribe Command = "transcribe"
	CommandEvict      Command = "evict"
	CommandModels     Command = "models"
	CommandDevices    Command = "devices"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

// argSpec bounds the positional argument count per command.
type argSpec struct {
	min int
	max int
}

var commandArgs = map[Command]argSpec{
	CommandDaemon:     {},
	CommandKeyDown:    {},
	CommandKeyUp:      {},
	CommandStart:      {},
	CommandStop:       {},
	CommandStatus:     {},
	CommandSetMode:    {min: 1, max: 1},
	CommandRebind:     {min: 1, max: 1},
	CommandImport:     {min: 1, max: 1},
	CommandTranscribe: {min: 1, max: 2},
	CommandEvict:      {min: 1, max: 1},
	CommandModels:     {},
	CommandDevices:    {},
	CommandDoctor:     {},
	CommandVersion:    {},
	CommandHelp:       {},
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	positionals := []string{}
	haveCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			if !haveCommand {
				cmd := Command(arg)
				if _, ok := commandArgs[cmd]; !ok {
					return Parsed{}, fmt.Errorf("unknown command: %s", arg)
				}
				parsed.Command = cmd
				parsed.ShowHelp = cmd == CommandHelp
				haveCommand = true
				continue
			}
			positionals = append(positionals, arg)
		}
	}

	if haveCommand {
		spec := commandArgs[parsed.Command]
		if len(positionals) < spec.min {
			return Parsed{}, fmt.Errorf("command %q requires %d argument(s)", parsed.Command, spec.min)
		}
		if len(positionals) > spec.max {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
		}
	}
	parsed.Args = positionals

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  daemon               Run the dictation daemon (IPC server)
  key-down             Forward a hotkey press to the daemon
  key-up               Forward a hotkey release to the daemon
  start                Start recording
  stop                 Stop recording and print the session id
  status               Print current daemon state
  set-mode MODE        Switch hotkey mode (push-to-talk | toggle)
  rebind SPEC          Replace the hotkey binding (e.g. SUPER+SHIFT+R)
  import PATH          Preprocess a WAV file into a stored session
  transcribe SID [MID] Transcribe a stored session, optionally naming a model
  evict MODEL          Drop a cached engine
  models               List catalog models and download state
  devices              List available input devices
  doctor               Run configuration and environment checks
  version              Print version information
  help                 Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/sobotta/config.yaml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
