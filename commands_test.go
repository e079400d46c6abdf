package main

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

// stubCommands replaces runCommand with canned output keyed by the joined
// command line.
func stubCommands(t *testing.T, outputs map[string]string, errs map[string]error) *[]string {
	t.Helper()
	var calls []string
	orig := runCommand
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		key := strings.Join(append([]string{name}, args...), " ")
		calls = append(calls, key)
		return []byte(outputs[key]), errs[key]
	}
	t.Cleanup(func() { runCommand = orig })
	return &calls
}

func TestParseVolume(t *testing.T) {
	out := "Simple mixer control 'Master',0\n  Front Left: Playback 45 [70%] [on]\n  Front Right: Playback 45 [70%] [on]\n"
	got, err := parseVolume(out)
	if err != nil || got != "70%" {
		t.Errorf("parseVolume() = %q, %v, want 70%%", got, err)
	}
	if _, err := parseVolume("no levels"); err == nil {
		t.Error("parseVolume() without a level should fail")
	}
}

func TestVolumeProducer(t *testing.T) {
	stubCommands(t, map[string]string{"amixer get PCM": "Mono: Playback [33%]"}, nil)
	got, err := volumeProducer("PCM")(context.Background())
	if err != nil || got != "33%" {
		t.Errorf("volume = %q, %v", got, err)
	}
}

func TestParsePing(t *testing.T) {
	tests := map[string]string{
		"rtt min/avg/max/mdev = 11.204/11.604/11.204/0.000 ms":       "12ms",
		"round-trip min/avg/max/stddev = 9.100/9.400/9.700/0.300 ms": "9ms",
		"1 packets transmitted, 0 received, 100% packet loss":         "0ms",
		"": "0ms",
	}
	for out, want := range tests {
		if got := parsePing(out); got != want {
			t.Errorf("parsePing(%q) = %q, want %q", out, got, want)
		}
	}
}

func TestPingProducerIgnoresExitStatus(t *testing.T) {
	stubCommands(t, nil, map[string]error{"ping -c1 -W1 10.0.0.1": errors.New("exit status 1")})
	got, err := pingProducer("10.0.0.1")(context.Background())
	if err != nil || got != "0ms" {
		t.Errorf("ping = %q, %v, want 0ms", got, err)
	}
}

func TestMusicProducer(t *testing.T) {
	tests := []struct {
		name    string
		outputs map[string]string
		errs    map[string]error
		want    string
		wantErr error
	}{
		{
			name: "playing",
			outputs: map[string]string{
				"playerctl status": "Playing\n",
				"playerctl metadata --format {{artist}} - {{title}}": "Artist - Title\n",
			},
			want: "Artist - Title",
		},
		{
			name:    "paused",
			outputs: map[string]string{"playerctl status": "Paused\n"},
			wantErr: ErrHidden,
		},
		{
			name:    "no player",
			errs:    map[string]error{"playerctl status": errors.New("exit status 1")},
			wantErr: ErrHidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubCommands(t, tt.outputs, tt.errs)
			got, err := musicProducer("")(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMusicProducerSelectsPlayer(t *testing.T) {
	calls := stubCommands(t, map[string]string{"playerctl --player spotify status": "Stopped"}, nil)
	if _, err := musicProducer("spotify")(context.Background()); !errors.Is(err, ErrHidden) {
		t.Fatalf("err = %v, want ErrHidden", err)
	}
	if len(*calls) != 1 || (*calls)[0] != "playerctl --player spotify status" {
		t.Errorf("calls = %v", *calls)
	}
}

func TestWifiProducer(t *testing.T) {
	info := "Interface wlan0\n\tifindex 3\n\tssid HomeNet\n\ttype managed\n"
	stubCommands(t, map[string]string{"iw dev wlan0 info": info}, map[string]error{"iw dev wlan9 info": &exec.ExitError{}})

	got, err := wifiProducer("wlan0")(context.Background())
	if err != nil || got != "HomeNet" {
		t.Errorf("wifi = %q, %v", got, err)
	}
	got, err = wifiProducer("wlan9")(context.Background())
	if err != nil || got != "Interface N/A" {
		t.Errorf("missing interface = %q, %v", got, err)
	}
	if got := parseSSID("Interface wlan0\n\ttype managed\n"); got != unavailable {
		t.Errorf("parseSSID() unassociated = %q", got)
	}
}
