package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// runCommand is swapped out in tests.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

var volumeRe = regexp.MustCompile(`\[(\d+)%\]`)

func volumeProducer(control string) Producer {
	return func(ctx context.Context) (string, error) {
		out, err := runCommand(ctx, "amixer", "get", control)
		if err != nil {
			return "", fmt.Errorf("amixer get %s: %w", control, err)
		}
		return parseVolume(string(out))
	}
}

func parseVolume(out string) (string, error) {
	m := volumeRe.FindStringSubmatch(out)
	if m == nil {
		return "", errors.New("no volume level in amixer output")
	}
	return m[1] + "%", nil
}

// rtt min/avg/max/mdev = 11.204/11.204/11.204/0.000 ms
var pingRe = regexp.MustCompile(`= [\d.]+/([\d.]+)/`)

func pingProducer(host string) Producer {
	return func(ctx context.Context) (string, error) {
		// ping exits non-zero when the host is unreachable; the output still
		// decides the value.
		out, _ := runCommand(ctx, "ping", "-c1", "-W1", host)
		return parsePing(string(out)), nil
	}
}

func parsePing(out string) string {
	ms := 0
	if m := pingRe.FindStringSubmatch(out); m != nil {
		if avg, err := strconv.ParseFloat(m[1], 64); err == nil {
			ms = int(math.Round(avg))
		}
	}
	return strconv.Itoa(ms) + "ms"
}

func musicProducer(player string) Producer {
	args := func(rest ...string) []string {
		if player == "" {
			return rest
		}
		return append([]string{"--player", player}, rest...)
	}
	return func(ctx context.Context) (string, error) {
		status, err := runCommand(ctx, "playerctl", args("status")...)
		if err != nil {
			// playerctl fails when no player is running.
			return "", ErrHidden
		}
		if strings.TrimSpace(string(status)) != "Playing" {
			return "", ErrHidden
		}
		out, err := runCommand(ctx, "playerctl", args("metadata", "--format", "{{artist}} - {{title}}")...)
		if err != nil {
			return "", fmt.Errorf("playerctl metadata: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}
}

func wifiProducer(iface string) Producer {
	return func(ctx context.Context) (string, error) {
		out, err := runCommand(ctx, "iw", "dev", iface, "info")
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return "Interface N/A", nil
			}
			return "", fmt.Errorf("iw dev %s info: %w", iface, err)
		}
		return parseSSID(string(out)), nil
	}
}

// parseSSID returns the ssid line of `iw dev <if> info`, or N/A when the
// interface is not associated.
func parseSSID(out string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if ssid, ok := strings.CutPrefix(line, "ssid "); ok {
			return ssid
		}
	}
	return unavailable
}
