package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/iti/virnet"
	"github.com/spf13/cobra"
)

// levelNames are the values accepted by --log-level
var levelNames = map[string]slog.Level{
	"trace": virnet.LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// parseLevel looks up a --log-level value, ignoring case. An empty name is info.
func parseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	lvl, present := levelNames[strings.ToLower(name)]
	if !present {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want trace, debug, info, warn or error)", name)
	}
	return lvl, nil
}

// newLogger writes text records at or above lvl to w. Per-step records
// carry the level name TRACE.
func newLogger(lvl slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}
			if recLvl, ok := a.Value.Any().(slog.Level); ok && recLvl == virnet.LevelTrace {
				a.Value = slog.StringValue("TRACE")
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// commandLogger builds the logger selected by --log-level on the command's
// error stream
func commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	lvl, err := parseLevel(name)
	if err != nil {
		return nil, err
	}
	return newLogger(lvl, cmd.ErrOrStderr()), nil
}
