package config

import (
	"strings"

	"github.com/stripwm/stripwm/internal/platform"
	"github.com/stripwm/stripwm/internal/wmerr"
)

// splitExpr turns a binding expression key like "window_focus_east"
// into its space-separated tokens, mirroring the CLI grammar (§6.4:
// "joined by `_` for bindings and by spaces on the CLI").
func splitExpr(expr string) []string {
	return strings.Split(expr, "_")
}

// ParseDirection parses one of the six Direction tokens.
func ParseDirection(tok string) (platform.Direction, error) {
	switch tok {
	case "north":
		return platform.North, nil
	case "south":
		return platform.South, nil
	case "west":
		return platform.West, nil
	case "east":
		return platform.East, nil
	case "first":
		return platform.First, nil
	case "last":
		return platform.Last, nil
	default:
		return 0, wmerr.New(wmerr.InvalidConfig, "ParseDirection", "unhandled direction "+tok)
	}
}

// ParseOperation parses a Window(Op) argument vector (argv[0] is the
// operation name, e.g. "focus", "swap", "stack").
func ParseOperation(argv []string) (platform.Operation, error) {
	if len(argv) == 0 {
		return nil, wmerr.New(wmerr.InvalidConfig, "ParseOperation", "empty command")
	}
	switch argv[0] {
	case "focus":
		if len(argv) < 2 {
			return nil, wmerr.New(wmerr.InvalidConfig, "ParseOperation", "focus requires a direction")
		}
		dir, err := ParseDirection(argv[1])
		if err != nil {
			return nil, err
		}
		return platform.OpFocus{Dir: dir}, nil
	case "swap":
		if len(argv) < 2 {
			return nil, wmerr.New(wmerr.InvalidConfig, "ParseOperation", "swap requires a direction")
		}
		dir, err := ParseDirection(argv[1])
		if err != nil {
			return nil, err
		}
		return platform.OpSwap{Dir: dir}, nil
	case "center":
		return platform.OpCenter{}, nil
	case "resize":
		return platform.OpResize{}, nil
	case "fullwidth":
		return platform.OpFullWidth{}, nil
	case "manage":
		return platform.OpManage{}, nil
	case "equalize":
		return platform.OpEqualize{}, nil
	case "stack":
		return platform.OpStack{Stack: true}, nil
	case "unstack":
		return platform.OpStack{Stack: false}, nil
	case "nextdisplay":
		return platform.OpToNextDisplay{}, nil
	default:
		return nil, wmerr.New(wmerr.InvalidConfig, "ParseOperation", "invalid command "+strings.Join(argv, " "))
	}
}

// ParseMouseMove parses a Mouse(Move) argument vector.
func ParseMouseMove(argv []string) (platform.MouseMove, error) {
	if len(argv) == 0 || argv[0] != "nextdisplay" {
		return nil, wmerr.New(wmerr.InvalidConfig, "ParseMouseMove", "invalid mouse command")
	}
	return platform.MouseToNextDisplay{}, nil
}

// ParseCommand parses the full top-level grammar (§6.1/§6.4): argv[0]
// selects "window"|"mouse"|"quit"|"printstate".
func ParseCommand(argv []string) (platform.Command, error) {
	if len(argv) == 0 {
		return nil, wmerr.New(wmerr.InvalidConfig, "ParseCommand", "empty command")
	}
	switch argv[0] {
	case "printstate":
		return platform.CmdPrintState{}, nil
	case "quit":
		return platform.CmdQuit{}, nil
	case "window":
		op, err := ParseOperation(argv[1:])
		if err != nil {
			return nil, err
		}
		return platform.CmdWindow{Op: op}, nil
	case "mouse":
		mv, err := ParseMouseMove(argv[1:])
		if err != nil {
			return nil, err
		}
		return platform.CmdMouse{Move: mv}, nil
	default:
		return nil, wmerr.New(wmerr.InvalidConfig, "ParseCommand", "unhandled command "+strings.Join(argv, " "))
	}
}
