package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/vegehub/internal/config"
)

var sensorKindFlag string

// nicknameCmd stores a user-friendly name for a hub
var nicknameCmd = &cobra.Command{
	Use:   "nickname <name>",
	Short: "Set a nickname for a hub",
	Long: `Store a user-friendly nickname for a hub in the local registry.

The nickname is shown by 'scan' and 'report'. The hub is contacted once to
read the MAC address that keys its registry entry.`,
	Example: `  vegehub-cfg nickname "Greenhouse Hub" --device 192.168.0.100`,
	Args:    cobra.ExactArgs(1),
	RunE:    runNickname,
}

// channelLabelCmd records what sensor is attached to a channel
var channelLabelCmd = &cobra.Command{
	Use:   "channel-label <slot> <label>",
	Short: "Label a sensor channel",
	Long: `Record a label and sensor type for one of a hub's sensor channels in
the local registry. Slots are 1-based, matching the wire slot numbering in
update reports.

The sensor type drives how 'report' renders the channel's values: vh400
channels show volumetric water content, therm200 channels show degrees
Celsius, everything else shows the raw voltage.`,
	Example: `  vegehub-cfg channel-label 1 "Tomato Bed Moisture" --sensor vh400 --device 192.168.0.100
  vegehub-cfg channel-label 2 "Soil Temp" --sensor therm200 --device 192.168.0.100`,
	Args: cobra.ExactArgs(2),
	RunE: runChannelLabel,
}

// actuatorLabelCmd records what an actuator slot drives
var actuatorLabelCmd = &cobra.Command{
	Use:   "actuator-label <slot> <label>",
	Short: "Label an actuator slot",
	Long: `Record a label for one of a hub's actuator slots in the local
registry. Slots are 0-based, matching 'actuators' and 'actuator-set'.`,
	Example: `  vegehub-cfg actuator-label 0 "Drip Line Valve" --device 192.168.0.100`,
	Args:    cobra.ExactArgs(2),
	RunE:    runActuatorLabel,
}

func init() {
	channelLabelCmd.Flags().StringVar(&sensorKindFlag, "sensor", "raw", "Sensor type attached to the channel")

	rootCmd.AddCommand(nicknameCmd)
	rootCmd.AddCommand(channelLabelCmd)
	rootCmd.AddCommand(actuatorLabelCmd)
}

func runNickname(cmd *cobra.Command, args []string) error {
	mac, err := resolveMAC(cmd)
	if err != nil {
		return err
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	registry.SetHubNickname(mac, args[0])
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Printf("✓ Hub %s nicknamed %q\n", mac, args[0])
	return nil
}

func runChannelLabel(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 1 {
		return fmt.Errorf("invalid slot %q: must be a positive integer (channels are 1-based)", args[0])
	}
	if err := validateSensorKind(sensorKindFlag); err != nil {
		return err
	}

	mac, err := resolveMAC(cmd)
	if err != nil {
		return err
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	registry.SetChannelLabel(mac, slot, args[1], sensorKindFlag)
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Printf("✓ Channel %d on %s labelled %q (%s)\n",
		slot, mac, args[1], config.SensorTypeDefinitions[sensorKindFlag])
	return nil
}

func runActuatorLabel(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 0 {
		return fmt.Errorf("invalid slot %q: must be a non-negative integer", args[0])
	}

	mac, err := resolveMAC(cmd)
	if err != nil {
		return err
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	registry.SetActuatorLabel(mac, slot, args[1])
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Printf("✓ Actuator %d on %s labelled %q\n", slot, mac, args[1])
	return nil
}

// validateSensorKind rejects sensor type identifiers the registry does not
// define.
func validateSensorKind(kind string) error {
	if _, ok := config.SensorTypeDefinitions[kind]; ok {
		return nil
	}
	kinds := make([]string, 0, len(config.SensorTypeDefinitions))
	for k := range config.SensorTypeDefinitions {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return fmt.Errorf("unknown sensor type %q (valid: %s)", kind, strings.Join(kinds, ", "))
}

// resolveMAC contacts the device once to learn the MAC address that keys
// its registry entry.
func resolveMAC(cmd *cobra.Command) (string, error) {
	h, err := connectHub(cmd.Context())
	if err != nil {
		return "", err
	}
	defer h.Close()

	ok, err := h.RetrieveMAC(cmd.Context(), retries)
	if err != nil {
		return "", fmt.Errorf("failed to read hub MAC address: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("hub did not report a MAC address")
	}
	return h.MACAddress(), nil
}
