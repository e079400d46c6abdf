package main

import (
	"context"
	"fmt"
	"math"
	"net/netip"
	"strings"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
)

func clockProducer(layout string, now func() time.Time) Producer {
	return func(ctx context.Context) (string, error) {
		return now().Format(layout), nil
	}
}

func memoryProducer(percentage bool) Producer {
	return func(ctx context.Context) (string, error) {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("reading memory: %w", err)
		}
		if percentage {
			return fmt.Sprintf("%d%%", int(math.Round(vm.UsedPercent))), nil
		}
		return fmt.Sprintf("%dM", int(math.Round(float64(vm.Used)/1024/1024))), nil
	}
}

func cpuProducer(ctx context.Context) (string, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return "", fmt.Errorf("reading cpu: %w", err)
	}
	if len(pct) == 0 {
		return unavailable, nil
	}
	return fmt.Sprintf("%.1f%%", math.Round(pct[0]*10)/10), nil
}

func diskProducer(path string) Producer {
	return func(ctx context.Context) (string, error) {
		usage, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			return "", fmt.Errorf("reading disk %s: %w", path, err)
		}
		return fmt.Sprintf("%.1f%%", math.Round(usage.UsedPercent*10)/10), nil
	}
}

func ipAddressProducer(iface string) Producer {
	return func(ctx context.Context) (string, error) {
		ifaces, err := psnet.InterfacesWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("listing interfaces: %w", err)
		}
		return firstIPv4(ifaces, iface), nil
	}
}

func firstIPv4(ifaces psnet.InterfaceStatList, name string) string {
	for _, i := range ifaces {
		if i.Name != name {
			continue
		}
		for _, a := range i.Addrs {
			s, _, _ := strings.Cut(a.Addr, "/")
			if addr, err := netip.ParseAddr(s); err == nil && addr.Is4() {
				return addr.String()
			}
		}
	}
	return unavailable
}

func batteryProducer(index int, icons batteryIcons) Producer {
	return func(ctx context.Context) (string, error) {
		bat, err := battery.Get(index)
		if err != nil && (bat == nil || bat.Full <= 0) {
			return "", fmt.Errorf("reading battery %d: %w", index, err)
		}
		if bat == nil || bat.Full <= 0 {
			return unavailable, nil
		}
		level := int(math.Round(bat.Current / bat.Full * 100))
		if level > 100 {
			level = 100
		}
		return formatBattery(level, bat.State.Raw == battery.Charging, icons), nil
	}
}
