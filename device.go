package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"murmur/audio"
)

// findDevice resolves a device by exact name, or nil for the default.
func findDevice(ctx audio.Context, name string) *audio.DeviceInfo {
	devices, err := ctx.Devices()
	if err != nil {
		return nil
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i]
		}
	}
	return nil
}

// selectDevice prompts for a capture device when more than one exists.
func selectDevice(ctx audio.Context) (*audio.DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}
	if len(devices) == 1 {
		fmt.Printf("Using device: %s\n", devices[0].Name)
		return &devices[0], nil
	}

	fmt.Println("Select input device:")
	for i, d := range devices {
		fmt.Printf("  %d. %s\n", i+1, d.Name)
	}
	fmt.Printf("Choice [1-%d]: ", len(devices))

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return &devices[0], nil
	}
	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(devices) {
		return nil, fmt.Errorf("invalid choice %q", line)
	}
	fmt.Printf("Selected: %s\n", devices[idx-1].Name)
	return &devices[idx-1], nil
}
