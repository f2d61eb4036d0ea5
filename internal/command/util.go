package command

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"golang.org/x/term"

	"github.com/sohansahooo/vidshort/internal/config"
)

type configKey struct{}

func configFrom(ctx context.Context) (config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(config.Config)
	if !ok {
		return config.Config{}, errors.New("configuration was not loaded")
	}
	return cfg, nil
}

// prompt reads a single line from stdin. The prompt is only shown on a
// terminal, and input is hidden there when mask is set.
func prompt(label string, mask bool) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(os.Stdin)
	}
	if _, err := os.Stderr.WriteString(label); err != nil {
		return nil, err
	}
	if mask {
		line, err := term.ReadPassword(fd)
		_, _ = os.Stderr.WriteString("\n")
		return line, err
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}
