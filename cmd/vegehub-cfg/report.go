package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/vegehub/internal/config"
	"github.com/muurk/vegehub/internal/hub"
	"github.com/muurk/vegehub/internal/transform"
)

var (
	haLayout    bool
	haSensors   int
	haActuators int
	haAC        bool
)

// reportCmd decodes an update report pushed by a hub
var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Decode a pushed sensor update report",
	Long: `Decode an update report JSON document, as pushed by a hub to its
configured server, and display per-channel values.

Channels with metadata in the local registry (see 'channel-label') are
rendered through their configured sensor curve (VH400 soil moisture,
THERM200 soil temperature); other channels show the raw voltage.

Use '-' to read the report from standard input. With --format json the
report is flattened to one latest value per channel, keyed by
"{mac}_{slot}".`,
	Example: `  # Decode a captured report
  vegehub-cfg report update.json

  # Read from a pipe
  cat update.json | vegehub-cfg report -

  # Flattened latest values for scripting
  vegehub-cfg report update.json --format json

  # Home Assistant channel layout for a 4-sensor battery hub
  vegehub-cfg report update.json --ha --sensors 4 --actuators 2`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&haLayout, "ha", false, "Render the Home Assistant channel layout")
	reportCmd.Flags().IntVar(&haSensors, "sensors", 4, "Sensor channel count for --ha")
	reportCmd.Flags().IntVar(&haActuators, "actuators", 0, "Actuator slot count for --ha")
	reportCmd.Flags().BoolVar(&haAC, "ac", false, "Hub is AC powered (no battery slot) for --ha")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	var report transform.UpdateReport
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("failed to decode report: %w", err)
	}

	if outputFormat == "json" {
		out, err := json.MarshalIndent(report.ToLatest(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if haLayout {
		fmt.Print(renderHAReport(&report, haSensors, haActuators, haAC))
		return nil
	}

	var meta *config.Hub
	if report.MAC != "" {
		if registry, err := config.LoadRegistry(); err == nil {
			meta = registry.GetHub(hub.NormalizeMAC(report.MAC))
		}
	}

	fmt.Print(renderReport(&report, meta))
	return nil
}

// renderReport formats a report's channels, applying each channel's
// configured sensor curve from the registry metadata when present.
func renderReport(report *transform.UpdateReport, meta *config.Hub) string {
	var b strings.Builder

	if report.MAC != "" {
		fmt.Fprintf(&b, "Report from %s", strings.ToUpper(hub.NormalizeMAC(report.MAC)))
		if meta != nil && meta.Nickname != "" {
			fmt.Fprintf(&b, " (%s)", meta.Nickname)
		}
		b.WriteString("\n")
	}
	if report.ErrorCode != 0 {
		fmt.Fprintf(&b, "Device error code: %d\n", report.ErrorCode)
	}

	readings := make([]transform.SensorReading, len(report.Sensors))
	copy(readings, report.Sensors)
	sort.Slice(readings, func(i, j int) bool { return readings[i].Slot < readings[j].Slot })

	for _, reading := range readings {
		sample, ok := reading.Latest()
		if !ok {
			fmt.Fprintf(&b, "Slot %d: no samples\n", reading.Slot)
			continue
		}

		kind := transform.KindRaw
		label := ""
		if meta != nil {
			if ch := meta.Channels[reading.Slot]; ch != nil {
				kind = ch.Sensor
				label = ch.Label
			}
		}

		name := fmt.Sprintf("Slot %d", reading.Slot)
		if label != "" {
			name = fmt.Sprintf("Slot %d (%s)", reading.Slot, label)
		}
		fmt.Fprintf(&b, "%s: %.2f %s\n", name, transform.Apply(kind, sample.Value), transform.Unit(kind))
	}

	return b.String()
}

// renderHAReport formats a report using the Home Assistant channel layout.
func renderHAReport(report *transform.UpdateReport, numSensors, numActuators int, isAC bool) string {
	values := report.ToHASensors(numSensors, numActuators, isAC)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %.2f\n", k, values[k])
	}
	return b.String()
}
